package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/conversebank/internal/messenger"
)

type call struct {
	kind string // "action" | "message"
	text string
}

type fakeSender struct {
	mu     sync.Mutex
	calls  []call
	failOn string // message text that triggers a failure
}

func (f *fakeSender) SendMessage(_ context.Context, _ string, msg messenger.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{kind: "message", text: msg.Text})
	if f.failOn != "" && msg.Text == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeSender) SendSenderAction(_ context.Context, _ string, action messenger.SenderAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{kind: "action", text: string(action)})
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func typingItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Action: messenger.TypingOn, Message: messenger.NewText(fmt.Sprintf("m%d", i))}
	}
	return items
}

func TestDeliver_AllInOrder(t *testing.T) {
	s := &fakeSender{}
	var slept []time.Duration
	e := NewEngine(s, 150*time.Millisecond, WithSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))

	n, err := e.Deliver(context.Background(), "u1", typingItems(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, []call{
		{"action", "typing_on"}, {"message", "m0"},
		{"action", "typing_on"}, {"message", "m1"},
		{"action", "typing_on"}, {"message", "m2"},
	}, s.calls)
	assert.Equal(t, []time.Duration{150 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond}, slept)
}

func TestDeliver_StopsAtFirstFailure(t *testing.T) {
	s := &fakeSender{failOn: "m2"}
	e := NewEngine(s, 0, WithSleep(noSleep))

	n, err := e.Deliver(context.Background(), "u1", typingItems(5))
	require.Error(t, err)
	assert.Equal(t, 2, n)

	var derr *Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 2, derr.Index)
	assert.Equal(t, 2, derr.Delivered)
	assert.EqualError(t, derr.Err, "boom")

	for _, c := range s.calls {
		assert.NotEqual(t, "m3", c.text)
		assert.NotEqual(t, "m4", c.text)
	}
	assert.Equal(t, call{"message", "m2"}, s.calls[len(s.calls)-1])
}

func TestDeliver_NoActionNoDelay(t *testing.T) {
	s := &fakeSender{}
	slept := 0
	e := NewEngine(s, time.Second, WithSleep(func(context.Context, time.Duration) error {
		slept++
		return nil
	}))

	_, err := e.Deliver(context.Background(), "u1", []Item{{Message: messenger.NewText("direct")}})
	require.NoError(t, err)
	assert.Equal(t, []call{{"message", "direct"}}, s.calls)
	assert.Zero(t, slept)
}

func TestDeliver_ActionOnly(t *testing.T) {
	s := &fakeSender{}
	e := NewEngine(s, time.Second, WithSleep(noSleep))

	_, err := e.Deliver(context.Background(), "u1", []Item{{Action: messenger.MarkSeen}})
	require.NoError(t, err)
	assert.Equal(t, []call{{"action", "mark_seen"}}, s.calls)
}

func TestDeliver_Observer(t *testing.T) {
	var seen []int
	e := NewEngine(&fakeSender{}, 0, WithSleep(noSleep), WithObserver(func(recipient string, index int, _ Item) {
		assert.Equal(t, "u9", recipient)
		seen = append(seen, index)
	}))

	_, err := e.Deliver(context.Background(), "u9", typingItems(3))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestDeliver_CancelledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSender{}
	e := NewEngine(s, time.Hour)
	n, err := e.Deliver(ctx, "u1", typingItems(2))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeliver_Empty(t *testing.T) {
	n, err := NewEngine(&fakeSender{}, 0).Deliver(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
