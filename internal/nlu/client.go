package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

const (
	// DefaultBaseURL is the api.ai v1 endpoint.
	DefaultBaseURL = "https://api.api.ai/v1"
	// ProtocolVersion pins the v1 response shape.
	ProtocolVersion = "20150910"
	// Source names the platform in originalRequest.
	Source = "facebook"
)

// ErrNoFulfillment is returned when the agent answered without a fulfillment.
var ErrNoFulfillment = errors.New("nlu: response has no fulfillment")

// Doer sends an HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the NLU agent.
type Client struct {
	baseURL string
	token   string
	lang    string
	http    Doer
}

// NewClient creates a Client. Queries are retried once on transport errors
// and 5xx responses.
func NewClient(baseURL, accessToken, lang string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lang == "" {
		lang = "en"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := heimdall.NewConstantBackoff(100*time.Millisecond, 5*time.Millisecond)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		lang:    lang,
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
			httpclient.WithRetryCount(1),
		),
	}
}

// WithDoer replaces the HTTP transport. Used by tests.
func (c *Client) WithDoer(d Doer) *Client {
	c.http = d
	return c
}

// TextQuery sends user text.
func (c *Client) TextQuery(ctx context.Context, sessionID, text string, original json.RawMessage) (*Response, error) {
	return c.Query(ctx, Request{SessionID: sessionID, Query: text, OriginalEvent: original})
}

// EventQuery triggers an event.
func (c *Client) EventQuery(ctx context.Context, sessionID string, ev Event, original json.RawMessage) (*Response, error) {
	return c.Query(ctx, Request{SessionID: sessionID, Event: &ev, OriginalEvent: original})
}

// Query sends r and returns the agent's response. A response without a
// fulfillment yields ErrNoFulfillment together with the response.
func (c *Client) Query(ctx context.Context, r Request) (*Response, error) {
	if r.Query == "" && r.Event == nil {
		return nil, errors.New("nlu: empty query")
	}

	body := wireRequest{
		Query:     r.Query,
		Event:     r.Event,
		Lang:      c.lang,
		SessionID: r.SessionID,
	}
	if r.OriginalEvent != nil {
		body.OriginalRequest = &originalRequest{Source: Source, Data: r.OriginalEvent}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("nlu: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/query?v="+ProtocolVersion, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("nlu: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlu: HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nlu: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nlu: HTTP %d: %s", resp.StatusCode, friendlyHTTPError(raw))
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("nlu: decode response: %w", err)
	}
	if out.Status.Code >= http.StatusBadRequest {
		return &out, fmt.Errorf("nlu: agent error %d: %s", out.Status.Code, out.Status.ErrorType)
	}
	if out.Result.Fulfillment == nil {
		return &out, ErrNoFulfillment
	}
	return &out, nil
}

func friendlyHTTPError(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
