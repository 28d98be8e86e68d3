package messenger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_MarshalShapes(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		kind Kind
		want string
	}{
		{
			name: "text",
			msg:  NewText("hi"),
			kind: KindText,
			want: `{"text":"hi"}`,
		},
		{
			name: "carousel",
			msg: NewCarousel([]Element{{
				Title:    "A",
				ImageURL: "http://img",
				Buttons:  []Button{{Type: "postback", Title: "Go", Payload: "go"}},
			}}),
			kind: KindCarousel,
			want: `{"attachment":{"type":"template","payload":{"template_type":"generic","elements":[{"title":"A","image_url":"http://img","buttons":[{"type":"postback","title":"Go","payload":"go"}]}]}}}`,
		},
		{
			name: "quick replies",
			msg:  NewQuickReplies("Choose", []string{"a"}),
			kind: KindQuickReplies,
			want: `{"text":"Choose","quick_replies":[{"content_type":"text","title":"a","payload":"a"}]}`,
		},
		{
			name: "image",
			msg:  NewImage("http://pic"),
			kind: KindImage,
			want: `{"attachment":{"type":"image","payload":{"url":"http://pic"}}}`,
		},
		{
			name: "button template",
			msg:  NewButtonTemplate("Tap", Button{Type: "web_url", Title: "Open", URL: "https://x", WebviewHeightRatio: "tall"}),
			kind: KindButtons,
			want: `{"attachment":{"type":"template","payload":{"template_type":"button","text":"Tap","buttons":[{"type":"web_url","title":"Open","url":"https://x","webview_height_ratio":"tall"}]}}}`,
		},
		{
			name: "raw",
			msg:  NewRaw(json.RawMessage(`{"custom":true}`)),
			kind: KindRaw,
			want: `{"custom":true}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
			assert.Equal(t, tc.kind, tc.msg.Kind())
			assert.False(t, tc.msg.IsZero())
		})
	}
}

func TestMessage_IsZero(t *testing.T) {
	assert.True(t, Message{}.IsZero())
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"object":"page","entry":[{"id":123,"messaging":[
		{"sender":{"id":1234567890123456789},"recipient":{"id":"99"},"message":{"mid":"m","text":"hello","quick_reply":{"payload":"QR"}}},
		{"sender":{"id":"5"},"postback":{"payload":"FACEBOOK_WELCOME"}}
	]}]}`)

	wb, err := ParseWebhook(body)
	require.NoError(t, err)
	require.Len(t, wb.Entry, 1)
	events := wb.Entry[0].Messaging
	require.Len(t, events, 2)

	assert.Equal(t, ID("1234567890123456789"), events[0].Sender.ID)
	assert.Equal(t, "QR", events[0].Text())
	assert.Contains(t, string(events[0].Raw), `"mid":"m"`)

	assert.Equal(t, ID("5"), events[1].Sender.ID)
	assert.Equal(t, PayloadWelcome, events[1].Text())
}

func TestParseWebhook_Invalid(t *testing.T) {
	_, err := ParseWebhook([]byte(`{not json`))
	assert.Error(t, err)
}

func TestInboundAttachment_Coordinates(t *testing.T) {
	a := InboundAttachment{Type: "location", Payload: json.RawMessage(`{"coordinates":{"lat":6.5,"long":3.3}}`)}
	assert.JSONEq(t, `{"lat":6.5,"long":3.3}`, string(a.Coordinates()))
}
