// Package bus defines the message types that flow between the webhook
// channel, the bot loop and the web-view handlers.
package bus

import (
	"encoding/json"
	"time"

	"github.com/crystaldolphin/conversebank/internal/shared/stringutils"
)

// Event is a named NLU event raised by the platform rather than typed text
// (e.g. FACEBOOK_WELCOME, FACEBOOK_LOCATION).
type Event struct {
	Name string
	Data json.RawMessage
}

// InboundMessage is one user turn received from a channel. Exactly one of
// Content and Event is meaningful.
type InboundMessage struct {
	Channel   Channel
	SenderID  string
	Content   string          // user utterance
	Event     *Event          // set for event turns
	Raw       json.RawMessage // platform event as received
	Timestamp time.Time
}

// NewInboundMessage creates a text InboundMessage with Timestamp set to now.
func NewInboundMessage(channel Channel, senderID, content string, raw json.RawMessage) InboundMessage {
	return InboundMessage{
		Channel:   channel,
		SenderID:  senderID,
		Content:   content,
		Raw:       raw,
		Timestamp: time.Now(),
	}
}

// NewEventMessage creates an event InboundMessage with Timestamp set to now.
func NewEventMessage(channel Channel, senderID string, ev Event, raw json.RawMessage) InboundMessage {
	return InboundMessage{
		Channel:   channel,
		SenderID:  senderID,
		Event:     &ev,
		Raw:       raw,
		Timestamp: time.Now(),
	}
}

// ContentPreview returns a short snippet of the message for logging.
func (m InboundMessage) ContentPreview() string {
	if m.Event != nil {
		return "event:" + m.Event.Name
	}
	return stringutils.Truncate(m.Content, 80)
}

// OutboundMessage is a plain notice to be sent back through a channel,
// outside of an NLU turn.
type OutboundMessage struct {
	Channel  Channel
	ChatID   string // recipient id
	Content  string
	Metadata string
}
