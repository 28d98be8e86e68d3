// Package messenger defines the Messenger Platform wire types and a client
// for the Send API.
package messenger

import "encoding/json"

// Kind classifies an outgoing message by its platform shape.
type Kind string

const (
	KindText         Kind = "text"
	KindCarousel     Kind = "carousel"
	KindQuickReplies Kind = "quick_replies"
	KindImage        Kind = "image"
	KindButtons      Kind = "buttons"
	KindRaw          Kind = "raw"
)

// SenderAction is a platform-level signal shown to the user, distinct from a message.
type SenderAction string

const (
	TypingOn  SenderAction = "typing_on"
	TypingOff SenderAction = "typing_off"
	MarkSeen  SenderAction = "mark_seen"
)

// Message is the value of the "message" field of a Send API request.
// A message built with Raw is marshalled verbatim.
type Message struct {
	Text         string       `json:"text,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	Metadata     string       `json:"metadata,omitempty"`

	raw json.RawMessage
}

// Attachment is a template or media attachment.
type Attachment struct {
	Type    string `json:"type"` // "template" | "image"
	Payload any    `json:"payload"`
}

// TemplatePayload is the payload of a template attachment.
type TemplatePayload struct {
	TemplateType string    `json:"template_type"` // "generic" | "button"
	Text         string    `json:"text,omitempty"`
	Elements     []Element `json:"elements,omitempty"`
	Buttons      []Button  `json:"buttons,omitempty"`
}

// MediaPayload is the payload of an image attachment.
type MediaPayload struct {
	URL string `json:"url"`
}

// Element is one card of a generic template.
type Element struct {
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

// Button is a link ("web_url") or "postback" button.
type Button struct {
	Type               string `json:"type"`
	Title              string `json:"title"`
	URL                string `json:"url,omitempty"`
	Payload            string `json:"payload,omitempty"`
	WebviewHeightRatio string `json:"webview_height_ratio,omitempty"`
}

// QuickReply is a suggested-reply chip.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// NewText returns a plain text message.
func NewText(text string) Message {
	return Message{Text: text}
}

// NewCarousel returns a generic template holding elements in order.
func NewCarousel(elements []Element) Message {
	return Message{Attachment: &Attachment{
		Type:    "template",
		Payload: TemplatePayload{TemplateType: "generic", Elements: elements},
	}}
}

// NewQuickReplies returns a text prompt with one text quick reply per entry;
// each reply's title and payload are the entry itself.
func NewQuickReplies(title string, replies []string) Message {
	qr := make([]QuickReply, 0, len(replies))
	for _, r := range replies {
		qr = append(qr, QuickReply{ContentType: "text", Title: r, Payload: r})
	}
	return Message{Text: title, QuickReplies: qr}
}

// NewImage returns an image attachment.
func NewImage(url string) Message {
	return Message{Attachment: &Attachment{Type: "image", Payload: MediaPayload{URL: url}}}
}

// NewButtonTemplate returns a button template with a prompt text.
func NewButtonTemplate(text string, buttons ...Button) Message {
	return Message{Attachment: &Attachment{
		Type:    "template",
		Payload: TemplatePayload{TemplateType: "button", Text: text, Buttons: buttons},
	}}
}

// NewRaw returns a message that is forwarded to the platform untouched.
func NewRaw(data json.RawMessage) Message {
	return Message{raw: data}
}

// IsZero reports whether m carries nothing to send.
func (m Message) IsZero() bool {
	return m.raw == nil && m.Text == "" && m.Attachment == nil && len(m.QuickReplies) == 0
}

// Raw returns the verbatim body of a raw message, or nil.
func (m Message) Raw() json.RawMessage { return m.raw }

// Kind derives the platform shape of m.
func (m Message) Kind() Kind {
	switch {
	case m.raw != nil:
		return KindRaw
	case m.Attachment != nil && m.Attachment.Type == "image":
		return KindImage
	case m.Attachment != nil:
		if tp, ok := m.Attachment.Payload.(TemplatePayload); ok && tp.TemplateType == "button" {
			return KindButtons
		}
		return KindCarousel
	case len(m.QuickReplies) > 0:
		return KindQuickReplies
	default:
		return KindText
	}
}

// Elements returns the carousel elements of a generic template, or nil.
func (m Message) Elements() []Element {
	if m.Attachment == nil {
		return nil
	}
	tp, ok := m.Attachment.Payload.(TemplatePayload)
	if !ok {
		return nil
	}
	return tp.Elements
}

// MarshalJSON emits the raw body for raw messages and the structured
// shape otherwise.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	type plain Message
	return json.Marshal(plain(m))
}
