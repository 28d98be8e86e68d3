package bot

import (
	"context"
	"log/slog"

	"github.com/crystaldolphin/conversebank/internal/banking"
	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/session"
)

// User-facing notices sent outside of an NLU turn.
const (
	NoticeNotCredited     = "No amount has been credited into your account."
	NoticeTransferExpired = "Your transfer request has expired. Please start again."
	NoticeBankUnavailable = "We could not reach the bank right now. Please try again later."

	noticeMetadata = "DEVELOPER_DEFINED_METADATA"
)

// Bank is the banking collaborator.
type Bank interface {
	Onboard(ctx context.Context, req banking.OnboardRequest) (banking.Response, error)
	Transfer(ctx context.Context, req banking.TransferRequest) (banking.Response, error)
	Balance(ctx context.Context, req banking.BalanceRequest) (banking.Response, error)
}

// OnboardForm is the data submitted by the onboarding web view.
type OnboardForm struct {
	PIN           string
	BVN           string
	AccountNumber string
}

// Transactions submits web-view forms to the bank and relays the outcome to
// the user through the outbound bus.
type Transactions struct {
	bank    Bank
	pending *session.PendingStore
	bus     bus.Bus
}

// NewTransactions creates a Transactions.
func NewTransactions(bank Bank, pending *session.PendingStore, b bus.Bus) *Transactions {
	return &Transactions{bank: bank, pending: pending, bus: b}
}

// Onboard enrols sender as a customer.
func (t *Transactions) Onboard(ctx context.Context, sender string, form OnboardForm) {
	resp, err := t.bank.Onboard(ctx, banking.OnboardRequest{
		FacebookID:    sender,
		PIN:           form.PIN,
		BVN:           form.BVN,
		AccountNumber: form.AccountNumber,
	})
	t.relay(ctx, sender, "onboard", resp, err)
}

// Transfer executes sender's pending transfer identified by ref. A missing,
// expired or mismatched pending transfer is reported to the user and nothing
// is sent to the bank.
func (t *Transactions) Transfer(ctx context.Context, sender, ref, pin string) {
	p, ok := t.pending.Take(sender, ref)
	if !ok {
		slog.Info("transfer without pending request", "sender", sender, "ref", ref)
		t.notify(ctx, sender, NoticeTransferExpired)
		return
	}
	resp, err := t.bank.Transfer(ctx, banking.TransferRequest{
		FacebookID:         sender,
		DestinationAccount: p.DestAccount,
		Amount:             p.Amount,
		PIN:                pin,
	})
	t.relay(ctx, sender, "transfer", resp, err)
}

// Balance runs a balance enquiry for sender.
func (t *Transactions) Balance(ctx context.Context, sender, pin string) {
	resp, err := t.bank.Balance(ctx, banking.BalanceRequest{PIN: pin})
	t.relay(ctx, sender, "balance", resp, err)
}

func (t *Transactions) relay(ctx context.Context, sender, op string, resp banking.Response, err error) {
	if err != nil {
		slog.Error("banking call failed", "op", op, "sender", sender, "err", err)
		if resp.ResponseMessage == "" {
			t.notify(ctx, sender, NoticeBankUnavailable)
			return
		}
	}
	slog.Info("banking response", "op", op, "sender", sender, "failed", resp.Failed())

	if resp.ResponseMessage != "" {
		t.notify(ctx, sender, resp.ResponseMessage)
	}
	if resp.Failed() {
		t.notify(ctx, sender, NoticeNotCredited)
	}
}

func (t *Transactions) notify(ctx context.Context, sender, text string) {
	msg := bus.OutboundMessage{
		Channel:  bus.ChannelMessenger,
		ChatID:   sender,
		Content:  text,
		Metadata: noticeMetadata,
	}
	if err := t.bus.PublishOutbound(ctx, msg); err != nil {
		slog.Error("notice dropped", "sender", sender, "err", err)
	}
}
