package fulfillment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// wireMessage is the union of every field any tagged element may carry.
type wireMessage struct {
	Type     json.RawMessage            `json:"type"`
	Speech   json.RawMessage            `json:"speech"`
	Title    string                     `json:"title"`
	Subtitle string                     `json:"subtitle"`
	ImageURL string                     `json:"imageUrl"`
	Buttons  []wireButton               `json:"buttons"`
	Replies  []string                   `json:"replies"`
	Payload  map[string]json.RawMessage `json:"payload"`
}

type wireButton struct {
	Text     string `json:"text"`
	Postback string `json:"postback"`
}

// Decode parses a fulfillment value. A JSON array becomes a message list;
// any other JSON object becomes the direct (single-value) form.
func Decode(data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Payload{}, fmt.Errorf("decode fulfillment: empty payload")
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return Payload{}, fmt.Errorf("decode fulfillment list: %w", err)
		}
		return Payload{Messages: DecodeMessages(raws)}, nil
	case '{':
		return Payload{Direct: json.RawMessage(trimmed)}, nil
	default:
		return Payload{}, fmt.Errorf("decode fulfillment: expected object or array")
	}
}

// DecodeMessages converts raw list elements into typed messages, in order.
// Elements that cannot be read or carry an unknown tag become Ignored.
func DecodeMessages(raws []json.RawMessage) []Message {
	out := make([]Message, 0, len(raws))
	for _, raw := range raws {
		out = append(out, decodeMessage(raw))
	}
	return out
}

func decodeMessage(raw json.RawMessage) Message {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return Ignored{Raw: raw}
	}

	var tag Type
	if err := json.Unmarshal(w.Type, &tag); err != nil {
		return Ignored{Raw: raw}
	}

	switch tag {
	case TypeText:
		return Text{Speech: speechText(w.Speech)}
	case TypeCard:
		card := Card{
			Title:    w.Title,
			ImageURL: w.ImageURL,
			Subtitle: w.Subtitle,
		}
		for _, b := range w.Buttons {
			card.Buttons = append(card.Buttons, Button{Text: b.Text, Postback: b.Postback})
		}
		return card
	case TypeQuickReplies:
		return QuickReplies{Title: w.Title, Replies: w.Replies}
	case TypeImage:
		return Image{ImageURL: w.ImageURL}
	case TypeCustomPayload:
		return CustomPayload{Payload: w.Payload}
	default:
		return Ignored{Raw: raw}
	}
}

// speechText accepts either a string or an array of strings.
// Array variants are joined line by line.
func speechText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return strings.Join(parts, "\n")
	}
	return ""
}
