// Package delivery sends an ordered sequence of platform messages to one
// recipient, pacing them with a typing indicator and stopping at the first
// failure.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crystaldolphin/conversebank/internal/messenger"
)

// DefaultDelay is the pause between a sender action and its message.
const DefaultDelay = 200 * time.Millisecond

// Item is one unit of delivery. Action, when set, is sent before Message.
// An item with an action and a zero Message sends only the action.
type Item struct {
	Action  messenger.SenderAction
	Message messenger.Message
}

// Sender is the platform collaborator used by the Engine.
type Sender interface {
	SendMessage(ctx context.Context, recipient string, msg messenger.Message) error
	SendSenderAction(ctx context.Context, recipient string, action messenger.SenderAction) error
}

// Error reports a failed delivery pass.
type Error struct {
	Index     int // index of the item that failed
	Delivered int // number of items fully sent before it
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("delivery: item %d failed after %d delivered: %v", e.Index, e.Delivered, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Observer is notified after each item is sent.
type Observer func(recipient string, index int, item Item)

// Engine delivers items one at a time. It is safe for concurrent use by
// different turns; each Deliver call is strictly sequential.
type Engine struct {
	sender    Sender
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called after every delivered item.
func WithObserver(fn Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// WithSleep replaces the pacing wait. Used by tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) { e.sleep = fn }
}

// NewEngine creates an Engine that waits delay between a sender action and
// the message that follows it.
func NewEngine(sender Sender, delay time.Duration, opts ...Option) *Engine {
	e := &Engine{sender: sender, delay: delay, sleep: sleepCtx}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deliver sends items to recipient in order. It returns the number of items
// delivered. On the first failure the remaining items are not attempted and
// the returned error is an *Error.
func (e *Engine) Deliver(ctx context.Context, recipient string, items []Item) (int, error) {
	for i, item := range items {
		if err := e.send(ctx, recipient, item); err != nil {
			slog.Warn("delivery: aborted", "recipient", recipient, "index", i, "delivered", i, "remaining", len(items)-i, "err", err)
			return i, &Error{Index: i, Delivered: i, Err: err}
		}
		for _, obs := range e.observers {
			obs(recipient, i, item)
		}
	}
	slog.Debug("delivery: done", "recipient", recipient, "count", len(items))
	return len(items), nil
}

func (e *Engine) send(ctx context.Context, recipient string, item Item) error {
	if item.Action != "" {
		if err := e.sender.SendSenderAction(ctx, recipient, item.Action); err != nil {
			return err
		}
		if item.Message.IsZero() {
			return nil
		}
		if err := e.sleep(ctx, e.delay); err != nil {
			return err
		}
	}
	if item.Message.IsZero() {
		return nil
	}
	return e.sender.SendMessage(ctx, recipient, item.Message)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
