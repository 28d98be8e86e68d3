package bot

import (
	"net/url"
	"strings"

	"github.com/crystaldolphin/conversebank/internal/messenger"
)

// Web-view pages opened from button templates.
const (
	PathOnboardPage  = "/onboarded/customer_onboarded.html"
	PathTransferPage = "/transfer/transfer.html"
	PathBalancePage  = "/balance/balance_enquiry.html"
)

// WebView describes one button template that opens a page in the
// Messenger web view.
type WebView struct {
	Path   string
	Prompt string
	Title  string
}

var (
	onboardView = WebView{
		Path:   PathOnboardPage,
		Prompt: "Click the below to get onboarded.",
		Title:  "Get Onboarded Now",
	}
	transferView = WebView{
		Path:   PathTransferPage,
		Prompt: "Click the button below to do transfer.",
		Title:  "Transfer Now",
	}
	balanceView = WebView{
		Path:   PathBalancePage,
		Prompt: "Click the button below to get your account balance.",
		Title:  "Get Account Balance",
	}
)

// Message builds the button template for sender. The page URL carries the
// sender id so the form handler can find the turn's state, and ref, when
// set, names the pending request the form confirms.
func (v WebView) Message(appURL, sender, ref string) messenger.Message {
	u := strings.TrimRight(appURL, "/") + v.Path + "?sender=" + url.QueryEscape(sender)
	if ref != "" {
		u += "&ref=" + url.QueryEscape(ref)
	}
	return messenger.NewButtonTemplate(v.Prompt, messenger.Button{
		Type:               "web_url",
		Title:              v.Title,
		URL:                u,
		WebviewHeightRatio: "tall",
	})
}
