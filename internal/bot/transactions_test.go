package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystaldolphin/conversebank/internal/banking"
	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/session"
)

type fakeBank struct {
	resp      banking.Response
	err       error
	onboard   []banking.OnboardRequest
	transfers []banking.TransferRequest
	balances  []banking.BalanceRequest
}

func (b *fakeBank) Onboard(_ context.Context, req banking.OnboardRequest) (banking.Response, error) {
	b.onboard = append(b.onboard, req)
	return b.resp, b.err
}

func (b *fakeBank) Transfer(_ context.Context, req banking.TransferRequest) (banking.Response, error) {
	b.transfers = append(b.transfers, req)
	return b.resp, b.err
}

func (b *fakeBank) Balance(_ context.Context, req banking.BalanceRequest) (banking.Response, error) {
	b.balances = append(b.balances, req)
	return b.resp, b.err
}

func notices(b *bus.MessageBus) []string {
	var out []string
	for {
		select {
		case m := <-b.OutboundChan():
			out = append(out, m.Content)
		default:
			return out
		}
	}
}

func TestTransactions_Onboard(t *testing.T) {
	bank := &fakeBank{resp: banking.Response{ResponseMessage: "Welcome aboard"}}
	b := bus.NewMessageBus(4)
	tx := NewTransactions(bank, session.NewPendingStore(time.Minute), b)

	tx.Onboard(context.Background(), "u1", OnboardForm{PIN: "1234", BVN: "22", AccountNumber: "0011"})

	require.Len(t, bank.onboard, 1)
	assert.Equal(t, banking.OnboardRequest{FacebookID: "u1", PIN: "1234", BVN: "22", AccountNumber: "0011"}, bank.onboard[0])
	assert.Equal(t, []string{"Welcome aboard"}, notices(b))
}

func TestTransactions_TransferUsesPending(t *testing.T) {
	bank := &fakeBank{resp: banking.Response{ResponseMessage: "Sent", Message: "An error has occurred while crediting"}}
	b := bus.NewMessageBus(4)
	pending := session.NewPendingStore(time.Minute)
	p := pending.Put("u1", "500", "0099")
	tx := NewTransactions(bank, pending, b)

	tx.Transfer(context.Background(), "u1", p.ID, "4321")

	require.Len(t, bank.transfers, 1)
	assert.Equal(t, banking.TransferRequest{FacebookID: "u1", DestinationAccount: "0099", Amount: "500", PIN: "4321"}, bank.transfers[0])
	assert.Equal(t, []string{"Sent", NoticeNotCredited}, notices(b))

	_, ok := pending.Peek("u1")
	assert.False(t, ok)
}

func TestTransactions_TransferExpired(t *testing.T) {
	bank := &fakeBank{}
	b := bus.NewMessageBus(4)
	tx := NewTransactions(bank, session.NewPendingStore(time.Minute), b)

	tx.Transfer(context.Background(), "u1", "any", "4321")

	assert.Empty(t, bank.transfers)
	assert.Equal(t, []string{NoticeTransferExpired}, notices(b))
}

func TestTransactions_TransferWrongRef(t *testing.T) {
	bank := &fakeBank{}
	b := bus.NewMessageBus(4)
	pending := session.NewPendingStore(time.Minute)
	pending.Put("u1", "500", "0099")
	tx := NewTransactions(bank, pending, b)

	tx.Transfer(context.Background(), "u1", "guessed", "4321")

	assert.Empty(t, bank.transfers)
	assert.Equal(t, []string{NoticeTransferExpired}, notices(b))
	_, ok := pending.Peek("u1")
	assert.True(t, ok)
}

func TestTransactions_BankDown(t *testing.T) {
	bank := &fakeBank{err: errors.New("timeout")}
	b := bus.NewMessageBus(4)
	tx := NewTransactions(bank, session.NewPendingStore(time.Minute), b)

	tx.Balance(context.Background(), "u1", "1")

	require.Len(t, bank.balances, 1)
	assert.Equal(t, []string{NoticeBankUnavailable}, notices(b))
}

func TestTransactions_NoticeRouting(t *testing.T) {
	bank := &fakeBank{resp: banking.Response{ResponseMessage: "Balance: 10"}}
	b := bus.NewMessageBus(1)
	tx := NewTransactions(bank, session.NewPendingStore(time.Minute), b)

	tx.Balance(context.Background(), "u7", "1")
	msg := <-b.OutboundChan()
	assert.Equal(t, bus.ChannelMessenger, msg.Channel)
	assert.Equal(t, "u7", msg.ChatID)
	assert.NotEmpty(t, msg.Metadata)
}
