package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/messenger"
	"github.com/crystaldolphin/conversebank/internal/transcode"
)

// TextSender sends a single message to a recipient.
type TextSender interface {
	SendMessage(ctx context.Context, recipient string, msg messenger.Message) error
}

// MessengerChannel receives Messenger webhook batches and sends text notices.
type MessengerChannel struct {
	Base
	sender    TextSender
	textLimit int
}

// NewMessengerChannel creates the Messenger channel.
func NewMessengerChannel(b bus.Bus, sender TextSender, allowFrom []string, textLimit int) *MessengerChannel {
	if textLimit <= 0 {
		textLimit = transcode.DefaultTextLimit
	}
	return &MessengerChannel{
		Base:      NewBase(bus.ChannelMessenger, b, allowFrom),
		sender:    sender,
		textLimit: textLimit,
	}
}

// HandleWebhook parses a webhook POST body and publishes one inbound
// message per user turn it contains. It returns an error only when the
// body cannot be parsed.
func (c *MessengerChannel) HandleWebhook(ctx context.Context, body []byte) error {
	wb, err := messenger.ParseWebhook(body)
	if err != nil {
		return err
	}
	for _, entry := range wb.Entry {
		for _, ev := range entry.Messaging {
			for _, msg := range c.Translate(ev) {
				slog.Info("inbound", "channel", c.channelName, "sender", msg.SenderID, "preview", msg.ContentPreview())
				c.HandleMessage(ctx, msg)
			}
		}
	}
	return nil
}

// Translate maps one webhook event to the turns it triggers: one location
// event per shared location, then the text of the message. Echoes of the
// page's own messages and events without text produce nothing.
func (c *MessengerChannel) Translate(ev messenger.Event) []bus.InboundMessage {
	sender := string(ev.Sender.ID)
	if sender == "" {
		return nil
	}

	var out []bus.InboundMessage
	switch {
	case ev.Message != nil && !ev.Message.IsEcho:
		for _, a := range ev.Message.Attachments {
			if a.Type != "location" {
				continue
			}
			out = append(out, bus.NewEventMessage(c.channelName, sender,
				bus.Event{Name: messenger.PayloadLocation, Data: a.Coordinates()}, ev.Raw))
		}
		if text := ev.Text(); text != "" {
			out = append(out, bus.NewInboundMessage(c.channelName, sender, text, ev.Raw))
		}
	case ev.Postback != nil && ev.Postback.Payload != "":
		switch ev.Postback.Payload {
		case messenger.PayloadWelcome:
			out = append(out, bus.NewEventMessage(c.channelName, sender,
				bus.Event{Name: messenger.PayloadWelcome}, ev.Raw))
		default:
			out = append(out, bus.NewInboundMessage(c.channelName, sender, ev.Postback.Payload, ev.Raw))
		}
	}
	return out
}

// Send delivers a text notice, split at the platform text limit. Segments
// are sent in order and sending stops at the first failure.
func (c *MessengerChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	for i, seg := range transcode.Chunk(msg.Content, c.textLimit) {
		m := messenger.NewText(seg)
		m.Metadata = msg.Metadata
		if err := c.sender.SendMessage(ctx, msg.ChatID, m); err != nil {
			return fmt.Errorf("send segment %d: %w", i, err)
		}
	}
	return nil
}
