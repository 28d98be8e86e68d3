// Package channels turns platform webhooks into bus messages and sends
// outbound notices back through the platform.
package channels

import (
	"context"
	"log/slog"
	"slices"

	"github.com/crystaldolphin/conversebank/internal/bus"
)

// Base holds common state and helper methods shared by channels.
type Base struct {
	channelName bus.Channel
	b           bus.Bus
	allowFrom   []string // empty = allow all
}

// NewBase creates a Base with the given channel name, bus, and allowlist.
func NewBase(name bus.Channel, b bus.Bus, allowFrom []string) Base {
	return Base{channelName: name, b: b, allowFrom: allowFrom}
}

// Name returns the channel name.
func (b *Base) Name() bus.Channel { return b.channelName }

// IsAllowed checks whether senderID is on the allowlist.
func (b *Base) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	return slices.Contains(b.allowFrom, senderID)
}

// HandleMessage verifies the sender is allowed, then pushes msg to the bus.
func (b *Base) HandleMessage(ctx context.Context, msg bus.InboundMessage) {
	if !b.IsAllowed(msg.SenderID) {
		slog.Warn("access denied", "channel", b.channelName, "sender", msg.SenderID)
		return
	}
	if err := b.b.PublishInbound(ctx, msg); err != nil {
		slog.Error("inbound dropped", "channel", b.channelName, "sender", msg.SenderID, "err", err)
	}
}
