package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// webhookExecutor abstracts the discordgo.Session method we use, enabling
// test mocks.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts events to a Discord channel webhook.
type Discord struct {
	id    string
	token string
	sess  webhookExecutor
}

// NewDiscord returns a notifier for the webhook identified by id and token.
func NewDiscord(id, token string) (*Discord, error) {
	if id == "" || token == "" {
		return nil, fmt.Errorf("discord: webhook id and token are both required")
	}
	sess, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Discord{id: id, token: token, sess: sess}, nil
}

// Notify implements Notifier.
func (d *Discord) Notify(ctx context.Context, evt Event) error {
	_, err := d.sess.WebhookExecute(d.id, d.token, false, buildWebhookParams(evt), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: execute webhook: %w", err)
	}
	return nil
}

func buildWebhookParams(evt Event) *discordgo.WebhookParams {
	embed := &discordgo.MessageEmbed{
		Title:       evt.Title,
		Description: evt.Body,
		Color:       parseHexColor(severityColor(evt.Severity)),
	}
	for _, f := range evt.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}
	return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
}
