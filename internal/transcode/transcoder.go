// Package transcode turns a platform-independent fulfillment into the ordered
// Messenger items handed to the delivery engine.
package transcode

import (
	"encoding/json"
	"log/slog"

	"github.com/crystaldolphin/conversebank/internal/delivery"
	"github.com/crystaldolphin/conversebank/internal/fulfillment"
	"github.com/crystaldolphin/conversebank/internal/messenger"
)

// Platform is the key custom payloads are looked up under.
const Platform = "facebook"

// DefaultTextLimit is the Messenger cap on text message length.
const DefaultTextLimit = 640

// DefaultQuickRepliesTitle is used when a quick reply group has no title.
const DefaultQuickRepliesTitle = "Choose an item"

// Transcoder classifies fulfillment messages into Messenger messages.
type Transcoder struct {
	textLimit int
}

// New creates a Transcoder that splits text at textLimit runes.
// A non-positive limit selects DefaultTextLimit.
func New(textLimit int) *Transcoder {
	if textLimit <= 0 {
		textLimit = DefaultTextLimit
	}
	return &Transcoder{textLimit: textLimit}
}

// Transcode renders p. A direct payload becomes one item without a sender
// action; every message produced from a list is preceded by typing_on.
func (t *Transcoder) Transcode(p fulfillment.Payload) []delivery.Item {
	if p.IsDirect() {
		return []delivery.Item{{Message: directMessage(p.Direct)}}
	}
	return t.TranscodeMessages(p.Messages)
}

// TranscodeMessages renders a message list in order.
func (t *Transcoder) TranscodeMessages(msgs []fulfillment.Message) []delivery.Item {
	var items []delivery.Item
	emit := func(m messenger.Message) {
		items = append(items, delivery.Item{Action: messenger.TypingOn, Message: m})
	}

	for i := 0; i < len(msgs); {
		switch m := msgs[i].(type) {
		case fulfillment.Card:
			carousel, next := Coalesce(msgs, i)
			emit(carousel)
			i = next
			continue
		case fulfillment.Text:
			if m.Speech != "" {
				for _, seg := range Chunk(m.Speech, t.textLimit) {
					emit(messenger.NewText(seg))
				}
			}
		case fulfillment.QuickReplies:
			if len(m.Replies) > 0 {
				title := m.Title
				if title == "" {
					title = DefaultQuickRepliesTitle
				}
				emit(messenger.NewQuickReplies(title, m.Replies))
			}
		case fulfillment.Image:
			if m.ImageURL != "" {
				emit(messenger.NewImage(m.ImageURL))
			}
		case fulfillment.CustomPayload:
			if raw, ok := m.PlatformPayload(Platform); ok {
				emit(messenger.NewRaw(raw))
			}
		case fulfillment.Ignored:
			slog.Debug("transcode: skipping unrecognised message", "raw", string(m.Raw))
		}
		i++
	}
	return items
}

// directMessage wraps a single fulfillment object. A bare {"speech": ...}
// object becomes a text message; anything else is forwarded as is.
func directMessage(raw json.RawMessage) messenger.Message {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		_, hasText := fields["text"]
		_, hasAttachment := fields["attachment"]
		if speech, ok := fields["speech"]; ok && !hasText && !hasAttachment {
			var s string
			if json.Unmarshal(speech, &s) == nil {
				return messenger.NewText(s)
			}
		}
	}
	return messenger.NewRaw(raw)
}
