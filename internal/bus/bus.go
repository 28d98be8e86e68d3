package bus

import "context"

// Bus is the contract between channels and the bot loop.
type Bus interface {
	// PublishInbound delivers a user turn to the bot loop.
	PublishInbound(ctx context.Context, msg InboundMessage) error
	// PublishOutbound delivers a notice to the channel manager.
	PublishOutbound(ctx context.Context, msg OutboundMessage) error
	// InboundChan returns a receive-only channel for the bot loop to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the in-process Bus backed by buffered Go channels.
// Publishing blocks when the buffer is full until ctx is done.
type MessageBus struct {
	inbound  chan InboundMessage  // channels → bot
	outbound chan OutboundMessage // web views → channels
}

// NewMessageBus creates a MessageBus with bufSize slots in each direction.
func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

func (b *MessageBus) PublishInbound(ctx context.Context, msg InboundMessage) error {
	select {
	case b.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MessageBus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MessageBus) InboundChan() <-chan InboundMessage { return b.inbound }

func (b *MessageBus) OutboundChan() <-chan OutboundMessage { return b.outbound }

func (b *MessageBus) InboundSize() int { return len(b.inbound) }

func (b *MessageBus) OutboundSize() int { return len(b.outbound) }
