// Package alert posts operator notifications to a Slack incoming webhook.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/crystaldolphin/conversebank/internal/delivery"
)

// PostFunc posts msg to an incoming webhook URL.
type PostFunc func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// SlackNotifier reports failed deliveries. With an empty webhook URL it
// only logs.
type SlackNotifier struct {
	webhookURL string
	post       PostFunc
}

// NewSlackNotifier creates a notifier posting to webhookURL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, post: slack.PostWebhookContext}
}

// WithPoster replaces the webhook transport. Used by tests.
func (n *SlackNotifier) WithPoster(fn PostFunc) *SlackNotifier {
	n.post = fn
	return n
}

// Enabled reports whether a webhook URL is configured.
func (n *SlackNotifier) Enabled() bool { return n.webhookURL != "" }

// NotifyDeliveryFailure posts a one-line summary of a failed turn.
func (n *SlackNotifier) NotifyDeliveryFailure(ctx context.Context, sender string, derr *delivery.Error) error {
	text := FailureText(sender, derr)
	if !n.Enabled() {
		slog.Debug("alert: slack disabled", "text", text)
		return nil
	}
	if err := n.post(ctx, n.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("alert: post to slack: %w", err)
	}
	return nil
}

// FailureText renders the alert line for a failed delivery.
func FailureText(sender string, derr *delivery.Error) string {
	return fmt.Sprintf("delivery to %s failed at item %d after %d delivered: %v",
		sender, derr.Index, derr.Delivered, derr.Err)
}
