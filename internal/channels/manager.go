package channels

import (
	"context"
	"log/slog"

	"github.com/crystaldolphin/conversebank/internal/bus"
)

// Channel is an outbound destination.
type Channel interface {
	Name() bus.Channel
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// Manager owns the enabled channels and routes outbound messages.
type Manager struct {
	channels map[bus.Channel]Channel
	b        bus.Bus
}

// NewManager creates a Manager routing outbound messages from b to chs.
func NewManager(b bus.Bus, chs ...Channel) *Manager {
	m := &Manager{channels: make(map[bus.Channel]Channel), b: b}
	for _, ch := range chs {
		m.channels[ch.Name()] = ch
		slog.Info("channel enabled", "name", ch.Name())
	}
	return m
}

// EnabledChannels returns the names of all enabled channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, string(n))
	}
	return names
}

// Run dispatches outbound messages until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-m.b.OutboundChan():
			ch, ok := m.channels[msg.Channel]
			if !ok {
				slog.Debug("unknown channel for outbound message", "channel", msg.Channel)
				continue
			}
			if err := ch.Send(ctx, msg); err != nil {
				slog.Error("send error", "channel", msg.Channel, "to", msg.ChatID, "err", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
