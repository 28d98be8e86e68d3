package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Postback payloads the page registers itself.
const (
	PayloadWelcome  = "FACEBOOK_WELCOME"
	PayloadLocation = "FACEBOOK_LOCATION"
)

// ID is a page-scoped identifier. The platform may encode it as a JSON
// number larger than 2^53, so it is kept as its literal text.
type ID string

// UnmarshalJSON accepts both string and number encodings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("messenger id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// WebhookBody is the body of a webhook POST.
type WebhookBody struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the messaging events of one page.
type Entry struct {
	ID        ID      `json:"id"`
	Messaging []Event `json:"messaging"`
}

// Participant identifies the sender or recipient of an event.
type Participant struct {
	ID ID `json:"id"`
}

// Event is one messaging event. Raw holds the event exactly as received.
type Event struct {
	Sender    Participant   `json:"sender"`
	Recipient Participant   `json:"recipient"`
	Message   *EventMessage `json:"message,omitempty"`
	Postback  *Postback     `json:"postback,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the event and keeps a copy of its raw bytes.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Event(p)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// EventMessage is the "message" part of an inbound event.
type EventMessage struct {
	Mid         string              `json:"mid,omitempty"`
	Text        string              `json:"text,omitempty"`
	IsEcho      bool                `json:"is_echo,omitempty"`
	QuickReply  *QuickReplyPayload  `json:"quick_reply,omitempty"`
	Attachments []InboundAttachment `json:"attachments,omitempty"`
}

// QuickReplyPayload is the payload of a tapped quick reply.
type QuickReplyPayload struct {
	Payload string `json:"payload"`
}

// InboundAttachment is an attachment sent by the user.
type InboundAttachment struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Coordinates returns the coordinates object of a location attachment.
func (a InboundAttachment) Coordinates() json.RawMessage {
	var p struct {
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil
	}
	return p.Coordinates
}

// Postback is the "postback" part of an inbound event.
type Postback struct {
	Title   string          `json:"title,omitempty"`
	Payload string          `json:"payload"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ParseWebhook decodes a webhook POST body. Numbers are preserved verbatim.
func ParseWebhook(body []byte) (WebhookBody, error) {
	var wb WebhookBody
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&wb); err != nil {
		return WebhookBody{}, fmt.Errorf("parse webhook: %w", err)
	}
	return wb, nil
}

// Text returns the user utterance carried by the event: a quick reply
// payload first, then message text, then a postback payload.
func (e Event) Text() string {
	if e.Message != nil {
		if e.Message.QuickReply != nil && e.Message.QuickReply.Payload != "" {
			return e.Message.QuickReply.Payload
		}
		if e.Message.Text != "" {
			return e.Message.Text
		}
	}
	if e.Postback != nil && e.Postback.Payload != "" {
		return e.Postback.Payload
	}
	return ""
}
