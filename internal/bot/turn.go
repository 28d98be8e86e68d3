package bot

import (
	"context"
	"time"

	"github.com/crystaldolphin/conversebank/internal/bus"
)

// Turn carries the state of one conversational turn through the pipeline.
// It replaces any process-wide notion of "the current sender".
type Turn struct {
	Channel      bus.Channel
	SenderID     string
	SessionToken string
	ReceivedAt   time.Time
}

type turnKey struct{}

// WithTurn returns a child context that carries t.
func WithTurn(ctx context.Context, t Turn) context.Context {
	return context.WithValue(ctx, turnKey{}, t)
}

// TurnFrom extracts the Turn from ctx.
// Returns a zero-value Turn if none was set.
func TurnFrom(ctx context.Context) Turn {
	t, _ := ctx.Value(turnKey{}).(Turn)
	return t
}
