package alert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/conversebank/internal/delivery"
)

func TestFailureText(t *testing.T) {
	derr := &delivery.Error{Index: 2, Delivered: 2, Err: errors.New("boom")}
	assert.Equal(t, "delivery to u1 failed at item 2 after 2 delivered: boom", FailureText("u1", derr))
}

func TestSlackNotifier_Posts(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	require.True(t, n.Enabled())
	err := n.NotifyDeliveryFailure(context.Background(), "u1", &delivery.Error{Index: 0, Err: errors.New("x")})
	require.NoError(t, err)
	assert.Equal(t, "delivery to u1 failed at item 0 after 0 delivered: x", got["text"])
}

func TestSlackNotifier_Disabled(t *testing.T) {
	called := false
	n := NewSlackNotifier("").WithPoster(func(context.Context, string, *slack.WebhookMessage) error {
		called = true
		return nil
	})
	assert.False(t, n.Enabled())
	require.NoError(t, n.NotifyDeliveryFailure(context.Background(), "u1", &delivery.Error{Err: errors.New("x")}))
	assert.False(t, called)
}

func TestSlackNotifier_PostError(t *testing.T) {
	n := NewSlackNotifier("http://hooks").WithPoster(func(context.Context, string, *slack.WebhookMessage) error {
		return errors.New("403")
	})
	assert.Error(t, n.NotifyDeliveryFailure(context.Background(), "u1", &delivery.Error{Err: errors.New("x")}))
}
