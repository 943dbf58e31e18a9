package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// Slack posts events to a Slack incoming webhook.
type Slack struct {
	url  string
	post func(ctx context.Context, url string, msg *slackapi.WebhookMessage) error
}

// NewSlack returns a notifier for the given incoming-webhook URL.
func NewSlack(url string) *Slack {
	return &Slack{url: url, post: slackapi.PostWebhookContext}
}

// Notify implements Notifier.
func (s *Slack) Notify(ctx context.Context, evt Event) error {
	if err := s.post(ctx, s.url, buildWebhookMessage(evt)); err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	return nil
}

func buildWebhookMessage(evt Event) *slackapi.WebhookMessage {
	att := slackapi.Attachment{
		Title: evt.Title,
		Text:  evt.Body,
		Color: severityColor(evt.Severity),
	}
	for _, f := range evt.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: true,
		})
	}
	return &slackapi.WebhookMessage{
		Text:        evt.Title,
		Attachments: []slackapi.Attachment{att},
	}
}
