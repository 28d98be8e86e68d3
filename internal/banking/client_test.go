package banking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Endpoints(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"responseMessage":"done"}`))
	}))
	defer srv.Close()

	c := NewClient(Endpoints{
		Onboard:  srv.URL + "/enrollcustomer",
		Transfer: srv.URL + "/transfer",
		Balance:  srv.URL + "/balanceenquiry",
	}, 0, time.Second)
	ctx := context.Background()

	resp, err := c.Onboard(ctx, OnboardRequest{FacebookID: "1", PIN: "1234", BVN: "222", AccountNumber: "0011"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.ResponseMessage)
	assert.False(t, resp.Failed())

	_, err = c.Transfer(ctx, TransferRequest{FacebookID: "1", DestinationAccount: "0099", Amount: "500", PIN: "1234"})
	require.NoError(t, err)

	_, err = c.Balance(ctx, BalanceRequest{PIN: "1234"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/enrollcustomer", "/transfer", "/balanceenquiry"}, paths)
	assert.Equal(t, map[string]any{"facebookId": "1", "pin": "1234", "bvn": "222", "accountNumber": "0011"}, bodies[0])
	assert.Equal(t, map[string]any{"facebookId": "1", "destinationAccount": "0099", "amount": "500", "pin": "1234"}, bodies[1])
	assert.Equal(t, map[string]any{"pin": "1234"}, bodies[2])
}

func TestClient_FailedTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"responseMessage":"Transfer failed","Message":"An error has occurred."}`))
	}))
	defer srv.Close()

	resp, err := NewClient(Endpoints{Transfer: srv.URL}, 0, time.Second).Transfer(context.Background(), TransferRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Failed())
	assert.Equal(t, "Transfer failed", resp.ResponseMessage)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"responseMessage":"Your balance is 10"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(Endpoints{Balance: srv.URL}, 2, time.Second).Balance(context.Background(), BalanceRequest{PIN: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Your balance is 10", resp.ResponseMessage)
	assert.Equal(t, 2, calls)
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Message":"Invalid PIN"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Endpoints{Balance: srv.URL}, 0, time.Second).Balance(context.Background(), BalanceRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid PIN")
}

func TestClient_MissingEndpoint(t *testing.T) {
	_, err := NewClient(Endpoints{}, 0, time.Second).Onboard(context.Background(), OnboardRequest{})
	assert.Error(t, err)
}
