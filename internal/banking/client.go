// Package banking calls the bank's conversational-banking endpoints.
// Business validation of PINs, account numbers and amounts happens there.
package banking

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

// ErrorMarker appears in Response.Message when a transaction failed.
const ErrorMarker = "An error has occurred"

// OnboardRequest enrols a Messenger user as a banking customer.
type OnboardRequest struct {
	FacebookID    string `json:"facebookId"`
	PIN           string `json:"pin"`
	BVN           string `json:"bvn"`
	AccountNumber string `json:"accountNumber"`
}

// TransferRequest moves Amount to DestinationAccount.
type TransferRequest struct {
	FacebookID         string `json:"facebookId"`
	DestinationAccount string `json:"destinationAccount"`
	Amount             string `json:"amount"`
	PIN                string `json:"pin"`
}

// BalanceRequest asks for the account balance.
type BalanceRequest struct {
	PIN string `json:"pin"`
}

// Response is the common reply of every endpoint.
type Response struct {
	ResponseMessage string `json:"responseMessage"`
	Message         string `json:"Message,omitempty"`
}

// Failed reports whether the bank flagged the transaction as failed.
func (r Response) Failed() bool {
	return strings.Contains(r.Message, ErrorMarker)
}

// Endpoints are the bank URLs.
type Endpoints struct {
	Onboard  string
	Transfer string
	Balance  string
}

// Client posts JSON requests to the bank with retries.
type Client struct {
	endpoints        Endpoints
	client           *httpclient.Client
	minHTTPErrorCode int
}

// NewClient creates a Client that retries transport errors and 5xx
// responses up to retries times.
func NewClient(endpoints Endpoints, retries int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := heimdall.NewConstantBackoff(200*time.Millisecond, 5*time.Millisecond)
	retrier := heimdall.NewRetrier(backoff)

	return &Client{
		endpoints: endpoints,
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetrier(retrier),
			httpclient.WithRetryCount(retries),
		),
		minHTTPErrorCode: http.StatusBadRequest,
	}
}

// Onboard enrols a customer.
func (c *Client) Onboard(ctx context.Context, req OnboardRequest) (Response, error) {
	return c.do(ctx, c.endpoints.Onboard, req)
}

// Transfer performs a transfer.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (Response, error) {
	return c.do(ctx, c.endpoints.Transfer, req)
}

// Balance runs a balance enquiry.
func (c *Client) Balance(ctx context.Context, req BalanceRequest) (Response, error) {
	return c.do(ctx, c.endpoints.Balance, req)
}

func (c *Client) do(ctx context.Context, url string, payload any) (Response, error) {
	if url == "" {
		return Response{}, errors.New("banking: endpoint not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("banking: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	r, err := c.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("banking: %w", err)
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Response{}, fmt.Errorf("banking: read response: %w", err)
	}

	var out Response
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil && r.StatusCode < c.minHTTPErrorCode {
			return Response{}, fmt.Errorf("banking: decode response: %w", err)
		}
	}

	if r.StatusCode >= c.minHTTPErrorCode {
		err = errors.New(r.Status)
		if out.Message != "" {
			err = errors.New(out.Message)
		}
		return out, fmt.Errorf("banking: %w", err)
	}
	return out, nil
}
