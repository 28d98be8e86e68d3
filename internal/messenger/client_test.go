package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path  string
	Token string
	Body  map[string]any
}

func newGraphServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		req := capturedRequest{Path: r.URL.Path, Token: r.URL.Query().Get("access_token")}
		if len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &req.Body))
		}
		got = append(got, req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestClient_SendMessage(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{"recipient_id":"42","message_id":"m1"}`)
	c := NewClient(srv.URL, "page-token", time.Second)

	err := c.SendMessage(context.Background(), "42", NewText("hello"))
	require.NoError(t, err)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "/me/messages", req.Path)
	assert.Equal(t, "page-token", req.Token)
	assert.Equal(t, map[string]any{"id": "42"}, req.Body["recipient"])
	assert.Equal(t, map[string]any{"text": "hello"}, req.Body["message"])
	assert.NotContains(t, req.Body, "sender_action")
}

func TestClient_SendSenderAction(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, "tok", time.Second)

	require.NoError(t, c.SendSenderAction(context.Background(), "7", TypingOn))
	require.Len(t, *got, 1)
	assert.Equal(t, "typing_on", (*got)[0].Body["sender_action"])
	assert.NotContains(t, (*got)[0].Body, "message")
}

func TestClient_PlatformRejection(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusOK, `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`)
	c := NewClient(srv.URL, "bad", time.Second)

	err := c.SendMessage(context.Background(), "1", NewText("x"))
	var perr *PlatformError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 190, perr.Code)
	assert.Equal(t, "OAuthException", perr.Type)
}

func TestClient_TransportErrorOnStatus(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadGateway, `upstream down`)
	c := NewClient(srv.URL, "tok", time.Second)

	err := c.SendMessage(context.Background(), "1", NewText("x"))
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
}

func TestClient_TransportErrorOnNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "tok", time.Second)
	err := c.SendSenderAction(context.Background(), "1", TypingOn)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
}

func TestClient_SetupCalls(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK, `{"success":true}`)
	c := NewClient(srv.URL, "tok", time.Second)

	require.NoError(t, c.Subscribe(context.Background()))
	require.NoError(t, c.SetGetStarted(context.Background(), PayloadWelcome))

	require.Len(t, *got, 2)
	assert.Equal(t, "/me/subscribed_apps", (*got)[0].Path)
	assert.Equal(t, "/me/thread_settings", (*got)[1].Path)
	assert.Equal(t, "call_to_actions", (*got)[1].Body["setting_type"])
	assert.Equal(t, []any{map[string]any{"payload": PayloadWelcome}}, (*got)[1].Body["call_to_actions"])
}
