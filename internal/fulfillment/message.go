// Package fulfillment models the platform-independent response messages
// returned by the NLU service as a closed set of variants.
package fulfillment

import "encoding/json"

// Type is the numeric tag carried by every element of a fulfillment list.
type Type int

const (
	TypeText          Type = 0
	TypeCard          Type = 1
	TypeQuickReplies  Type = 2
	TypeImage         Type = 3
	TypeCustomPayload Type = 4
)

// Message is one element of a fulfillment message list.
// The dynamic type is always one of Text, Card, QuickReplies, Image,
// CustomPayload or Ignored.
type Message interface {
	isMessage()
}

// Text is a plain speech bubble.
type Text struct {
	Speech string
}

// Button is a card button. Postback is empty when the NLU omitted it.
type Button struct {
	Text     string
	Postback string
}

// Card is a single rich card; adjacent cards are rendered as one carousel.
type Card struct {
	Title    string
	ImageURL string
	Subtitle string
	Buttons  []Button
}

// QuickReplies is a prompt with suggested replies.
type QuickReplies struct {
	Title   string
	Replies []string
}

// Image is a standalone picture.
type Image struct {
	ImageURL string
}

// CustomPayload carries per-platform objects keyed by platform name
// (e.g. "facebook"). Values are forwarded verbatim.
type CustomPayload struct {
	Payload map[string]json.RawMessage
}

// Ignored stands for an element whose tag is unknown or whose body could not
// be read. Raw is kept for logging.
type Ignored struct {
	Raw json.RawMessage
}

func (Text) isMessage()          {}
func (Card) isMessage()          {}
func (QuickReplies) isMessage()  {}
func (Image) isMessage()         {}
func (CustomPayload) isMessage() {}
func (Ignored) isMessage()       {}

// PlatformPayload returns the object stored under platform, if any.
// A JSON null counts as absent.
func (c CustomPayload) PlatformPayload(platform string) (json.RawMessage, bool) {
	raw, ok := c.Payload[platform]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// Payload is a decoded fulfillment: either an ordered message list or a
// single value that is sent without transcoding.
type Payload struct {
	Messages []Message
	Direct   json.RawMessage
}

// IsDirect reports whether the payload is the single-value form.
func (p Payload) IsDirect() bool { return p.Direct != nil }
