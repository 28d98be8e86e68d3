package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"
)

// DefaultGraphURL is the Graph API version the bot was built against.
const DefaultGraphURL = "https://graph.facebook.com/v2.6"

// PlatformError is a structured error reported in a Send API response body.
type PlatformError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("messenger: platform rejected request: %s (type=%s code=%d)", e.Message, e.Type, e.Code)
}

// TransportError is a network failure or an unstructured non-2xx response.
type TransportError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("messenger: transport: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("messenger: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Doer sends an HTTP request. *httpclient.Client and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Messenger Send API on behalf of one page.
type Client struct {
	graphURL string
	token    string
	http     Doer
}

// NewClient creates a Client. Requests are never retried; timeout bounds
// each call.
func NewClient(graphURL, pageAccessToken string, timeout time.Duration) *Client {
	if graphURL == "" {
		graphURL = DefaultGraphURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		graphURL: strings.TrimRight(graphURL, "/"),
		token:    pageAccessToken,
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(0),
		),
	}
}

// WithDoer replaces the HTTP transport. Used by tests.
func (c *Client) WithDoer(d Doer) *Client {
	c.http = d
	return c
}

type recipient struct {
	ID string `json:"id"`
}

type sendRequest struct {
	Recipient    recipient    `json:"recipient"`
	Message      *Message     `json:"message,omitempty"`
	SenderAction SenderAction `json:"sender_action,omitempty"`
}

// SendMessage delivers msg to the user identified by to.
func (c *Client) SendMessage(ctx context.Context, to string, msg Message) error {
	err := c.post(ctx, "/me/messages", sendRequest{Recipient: recipient{ID: to}, Message: &msg})
	if err != nil {
		slog.Error("messenger: send message failed", "recipient", to, "kind", msg.Kind(), "err", err)
	}
	return err
}

// SendSenderAction shows action (e.g. typing_on) to the user identified by to.
func (c *Client) SendSenderAction(ctx context.Context, to string, action SenderAction) error {
	err := c.post(ctx, "/me/messages", sendRequest{Recipient: recipient{ID: to}, SenderAction: action})
	if err != nil {
		slog.Error("messenger: send action failed", "recipient", to, "action", action, "err", err)
	}
	return err
}

// Subscribe subscribes the app to the page's webhook events.
func (c *Client) Subscribe(ctx context.Context) error {
	return c.post(ctx, "/me/subscribed_apps", nil)
}

// SetGetStarted registers the "Get Started" button for new threads.
func (c *Client) SetGetStarted(ctx context.Context, payload string) error {
	body := map[string]any{
		"setting_type": "call_to_actions",
		"thread_state": "new_thread",
		"call_to_actions": []map[string]string{
			{"payload": payload},
		},
	}
	return c.post(ctx, "/me/thread_settings", body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("messenger: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.graphURL + path + "?access_token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("messenger: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if perr := parsePlatformError(raw); perr != nil {
		return perr
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &TransportError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return nil
}

func parsePlatformError(raw []byte) *PlatformError {
	var body struct {
		Error *PlatformError `json:"error"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return nil
	}
	return body.Error
}
