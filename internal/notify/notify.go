// Package notify delivers appliance alerts to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/retromgr/internal/config"
)

// Severity levels, mapped to sidebar colours by the webhook adapters.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// Event is an alert to deliver.
type Event struct {
	Title    string
	Body     string
	Severity string
	Fields   []Field
}

// Field is a key-value pair displayed with an event.
type Field struct {
	Name  string
	Value string
}

// Notifier delivers events to one destination.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Multi fans an event out to several notifiers and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the notifier for the configured webhooks, or Nop when
// none are set.
func FromConfig(cfg config.NotifyConfig) (Notifier, error) {
	var m Multi
	if cfg.SlackWebhookURL != "" {
		m = append(m, NewSlack(cfg.SlackWebhookURL))
	}
	if cfg.DiscordWebhookID != "" || cfg.DiscordWebhookToken != "" {
		d, err := NewDiscord(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		if err != nil {
			return nil, err
		}
		m = append(m, d)
	}
	switch len(m) {
	case 0:
		return Nop{}, nil
	case 1:
		return m[0], nil
	}
	return m, nil
}

func severityColor(sev string) string {
	switch sev {
	case SeverityWarning:
		return "#daa038"
	case SeverityError:
		return "#d00000"
	case SeveritySuccess:
		return "#36a64f"
	}
	return "#439fe0"
}

// parseHexColor converts a hex color string (e.g. "#36a64f") to an int.
func parseHexColor(hex string) int {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var color int
	fmt.Sscanf(hex, "%x", &color)
	return color
}
