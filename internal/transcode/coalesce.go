package transcode

import (
	"strings"

	"github.com/crystaldolphin/conversebank/internal/fulfillment"
	"github.com/crystaldolphin/conversebank/internal/messenger"
)

// Coalesce consumes the run of consecutive cards starting at msgs[start]
// and returns it as one carousel, together with the index of the first
// message after the run. A run of one card still yields a carousel.
func Coalesce(msgs []fulfillment.Message, start int) (messenger.Message, int) {
	var elements []messenger.Element
	i := start
	for ; i < len(msgs); i++ {
		card, ok := msgs[i].(fulfillment.Card)
		if !ok {
			break
		}
		elements = append(elements, cardElement(card))
	}
	return messenger.NewCarousel(elements), i
}

func cardElement(c fulfillment.Card) messenger.Element {
	el := messenger.Element{
		Title:    c.Title,
		ImageURL: c.ImageURL,
		Subtitle: c.Subtitle,
	}
	for _, b := range c.Buttons {
		if btn, ok := ConvertButton(b); ok {
			el.Buttons = append(el.Buttons, btn)
		}
	}
	return el
}

// ConvertButton maps a card button to a platform button. A button without a
// label is skipped. The target defaults to the label; targets with an
// http(s) scheme become links, everything else a postback.
func ConvertButton(b fulfillment.Button) (messenger.Button, bool) {
	if b.Text == "" {
		return messenger.Button{}, false
	}
	target := b.Postback
	if target == "" {
		target = b.Text
	}
	if IsLink(target) {
		return messenger.Button{Type: "web_url", Title: b.Text, URL: target}, true
	}
	return messenger.Button{Type: "postback", Title: b.Text, Payload: target}, true
}

// IsLink reports whether target starts with an http or https scheme.
func IsLink(target string) bool {
	t := strings.ToLower(target)
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://")
}
