// Package bot runs conversational turns: it asks the NLU agent about each
// inbound message and delivers the rendered answer to the user.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/delivery"
	"github.com/crystaldolphin/conversebank/internal/fulfillment"
	"github.com/crystaldolphin/conversebank/internal/messenger"
	"github.com/crystaldolphin/conversebank/internal/nlu"
	"github.com/crystaldolphin/conversebank/internal/session"
	"github.com/crystaldolphin/conversebank/internal/transcode"
)

// Intents with banking side effects.
const (
	ActionEnrol    = "enrol-customer"
	ActionTransfer = "transfer-money"
	ActionBalance  = "balance-enquiry"
)

// NLU is the agent queried on every turn.
type NLU interface {
	TextQuery(ctx context.Context, sessionID, text string, original json.RawMessage) (*nlu.Response, error)
	EventQuery(ctx context.Context, sessionID string, ev nlu.Event, original json.RawMessage) (*nlu.Response, error)
}

// Notifier is told about turns whose delivery failed.
type Notifier interface {
	NotifyDeliveryFailure(ctx context.Context, sender string, err *delivery.Error) error
}

// Settings holds the loop's tunables.
type Settings struct {
	AppURL    string // base URL of the web-view pages
	TextLimit int
}

// Loop is the bot's processing engine.
//
// It reads InboundMessages from the bus and handles each one in its own
// goroutine. Turns for different senders run concurrently; a turn's
// messages are delivered strictly in order.
type Loop struct {
	bus        bus.Bus
	settings   Settings
	sessions   *session.Manager
	pending    *session.PendingStore
	nlu        NLU
	engine     *delivery.Engine
	transcoder *transcode.Transcoder
	notifier   Notifier
}

// NewLoop creates a Loop. notifier may be nil.
func NewLoop(
	b bus.Bus,
	settings Settings,
	sessions *session.Manager,
	pending *session.PendingStore,
	agent NLU,
	engine *delivery.Engine,
	notifier Notifier,
) *Loop {
	if settings.TextLimit <= 0 {
		settings.TextLimit = transcode.DefaultTextLimit
	}
	return &Loop{
		bus:        b,
		settings:   settings,
		sessions:   sessions,
		pending:    pending,
		nlu:        agent,
		engine:     engine,
		transcoder: transcode.New(settings.TextLimit),
		notifier:   notifier,
	}
}

// Run reads from the inbound bus and processes each message in a goroutine.
// Blocks until ctx is cancelled. Turns already started run to completion.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("Bot loop started")

	for {
		select {
		case msg := <-l.bus.InboundChan():
			go l.handleMessage(context.WithoutCancel(ctx), msg)
		case <-ctx.Done():
			slog.Info("Bot loop stopping")
			return ctx.Err()
		}
	}
}

func (l *Loop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	if err := l.ProcessTurn(ctx, msg); err != nil {
		slog.Error("turn failed", "sender", msg.SenderID, "err", err)
	}
}

// ProcessTurn runs one turn synchronously: session lookup, NLU query,
// routing and delivery.
func (l *Loop) ProcessTurn(ctx context.Context, msg bus.InboundMessage) error {
	turn := Turn{
		Channel:      msg.Channel,
		SenderID:     msg.SenderID,
		SessionToken: l.sessions.Token(msg.SenderID),
		ReceivedAt:   msg.Timestamp,
	}
	ctx = WithTurn(ctx, turn)

	slog.Info("Processing message", "sender", turn.SenderID, "channel", turn.Channel, "content", msg.ContentPreview())

	var (
		resp *nlu.Response
		err  error
	)
	if msg.Event != nil {
		resp, err = l.nlu.EventQuery(ctx, turn.SessionToken, nlu.Event{Name: msg.Event.Name, Data: msg.Event.Data}, msg.Raw)
	} else {
		resp, err = l.nlu.TextQuery(ctx, turn.SessionToken, msg.Content, msg.Raw)
	}
	if errors.Is(err, nlu.ErrNoFulfillment) {
		slog.Debug("nlu returned no fulfillment", "sender", turn.SenderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("nlu query: %w", err)
	}

	err = l.respond(ctx, resp.Result)
	var derr *delivery.Error
	if errors.As(err, &derr) && l.notifier != nil {
		if nerr := l.notifier.NotifyDeliveryFailure(ctx, turn.SenderID, derr); nerr != nil {
			slog.Warn("failure notification not sent", "sender", turn.SenderID, "err", nerr)
		}
	}
	return err
}

// respond routes the NLU result to the matching response strategy. The
// turn is read from ctx.
func (l *Loop) respond(ctx context.Context, r nlu.Result) error {
	turn := TurnFrom(ctx)
	f := r.Fulfillment
	if f == nil {
		f = &nlu.Fulfillment{}
	}
	slog.Debug("nlu result", "sender", turn.SenderID, "action", r.Action, "query", r.ResolvedQuery)

	switch r.Action {
	case ActionEnrol:
		return l.deliver(ctx, []delivery.Item{{Message: onboardView.Message(l.settings.AppURL, turn.SenderID, "")}})
	case ActionTransfer:
		if err := l.textResponse(ctx, f.Speech); err != nil {
			return err
		}
		amount := r.NestedParam("amount", "rechargeAmount")
		dest := r.Param("destAccount")
		p := l.pending.Put(turn.SenderID, amount, dest)
		if nonZero(amount) && dest != "" {
			return l.deliver(ctx, []delivery.Item{{Message: transferView.Message(l.settings.AppURL, turn.SenderID, p.ID)}})
		}
		return nil
	case ActionBalance:
		return l.deliver(ctx, []delivery.Item{{Message: balanceView.Message(l.settings.AppURL, turn.SenderID, "")}})
	}

	if data, ok := f.PlatformData(transcode.Platform); ok {
		return l.dataResponse(ctx, data)
	}
	if len(f.Messages) > 0 {
		return l.richContentResponse(ctx, f.Messages)
	}
	return l.textResponse(ctx, f.Speech)
}

// dataResponse forwards platform data. A list is sent element by element;
// elements carrying "sender_action" are sent as sender actions. A single
// object takes the direct-send path of the transcoder.
func (l *Loop) dataResponse(ctx context.Context, data json.RawMessage) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return l.deliver(ctx, l.transcoder.Transcode(fulfillment.Payload{Direct: data}))
	}

	items := make([]delivery.Item, 0, len(list))
	for _, el := range list {
		var head struct {
			SenderAction messenger.SenderAction `json:"sender_action"`
		}
		if json.Unmarshal(el, &head) == nil && head.SenderAction != "" {
			items = append(items, delivery.Item{Action: head.SenderAction})
			continue
		}
		items = append(items, delivery.Item{Message: messenger.NewRaw(el)})
	}
	return l.deliver(ctx, items)
}

// richContentResponse renders the generic message list.
func (l *Loop) richContentResponse(ctx context.Context, raws []json.RawMessage) error {
	items := l.transcoder.TranscodeMessages(fulfillment.DecodeMessages(raws))
	return l.deliver(ctx, items)
}

// textResponse sends speech split at the text limit, without typing
// indicators.
func (l *Loop) textResponse(ctx context.Context, speech string) error {
	if speech == "" {
		return nil
	}
	segs := transcode.Chunk(speech, l.settings.TextLimit)
	items := make([]delivery.Item, 0, len(segs))
	for _, s := range segs {
		items = append(items, delivery.Item{Message: messenger.NewText(s)})
	}
	return l.deliver(ctx, items)
}

func (l *Loop) deliver(ctx context.Context, items []delivery.Item) error {
	if len(items) == 0 {
		return nil
	}
	turn := TurnFrom(ctx)
	n, err := l.engine.Deliver(ctx, turn.SenderID, items)
	if err != nil {
		return err
	}
	slog.Info("Messages sent", "sender", turn.SenderID, "channel", turn.Channel,
		"count", n, "latency", time.Since(turn.ReceivedAt))
	return nil
}

func nonZero(amount string) bool {
	if amount == "" {
		return false
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return true
	}
	return f != 0
}
