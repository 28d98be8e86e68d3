// Package config defines the configuration schema for conversebank.
//
// JSON keys use camelCase. The same keys are accepted from YAML files.
package config

import (
	"time"

	"github.com/crystaldolphin/conversebank/internal/config/channel"
	"github.com/crystaldolphin/conversebank/internal/config/gateway"
)

// NLUConfig holds the api.ai agent settings.
type NLUConfig struct {
	AccessToken string `json:"accessToken" validate:"required"`
	Lang        string `json:"lang" validate:"required"`
	BaseURL     string `json:"baseUrl" validate:"required,url"`
	TimeoutMs   int    `json:"timeoutMs" validate:"gt=0"`
}

func defaultNLUConfig() NLUConfig {
	return NLUConfig{
		Lang:      "en",
		BaseURL:   "https://api.api.ai/v1",
		TimeoutMs: 10000,
	}
}

// BankingConfig holds the banking backend endpoints.
type BankingConfig struct {
	OnboardURL  string `json:"onboardUrl" validate:"required,url"`
	TransferURL string `json:"transferUrl" validate:"required,url"`
	BalanceURL  string `json:"balanceUrl" validate:"required,url"`
	Retries     int    `json:"retries" validate:"gte=0"`
	TimeoutMs   int    `json:"timeoutMs" validate:"gt=0"`
}

func defaultBankingConfig() BankingConfig {
	const base = "http://paygatetest.fidelitybank.ng/cbanking/api/conversebanking"
	return BankingConfig{
		OnboardURL:  base + "/enrollcustomer",
		TransferURL: base + "/transfer",
		BalanceURL:  base + "/balanceenquiry",
		Retries:     2,
		TimeoutMs:   15000,
	}
}

// PendingConfig controls how long a transfer waits for its PIN.
type PendingConfig struct {
	TTLMinutes int    `json:"ttlMinutes" validate:"gt=0"`
	SweepSpec  string `json:"sweepSpec" validate:"required"`
}

// AlertConfig holds where delivery failures are reported.
type AlertConfig struct {
	SlackWebhookURL string `json:"slackWebhookUrl" validate:"omitempty,url"`
}

// MonitorConfig toggles the live delivery feed at /monitor/ws.
type MonitorConfig struct {
	Enabled bool `json:"enabled"`
}

// Config is the root configuration object.
type Config struct {
	Messenger channel.MessengerConfig `json:"messenger"`
	NLU       NLUConfig               `json:"nlu"`
	Banking   BankingConfig           `json:"banking"`
	Gateway   gateway.GatewayConfig   `json:"gateway"`
	Pending   PendingConfig           `json:"pending"`
	Alert     AlertConfig             `json:"alert"`
	Monitor   MonitorConfig           `json:"monitor"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Messenger: channel.DefaultMessengerConfig(),
		NLU:       defaultNLUConfig(),
		Banking:   defaultBankingConfig(),
		Gateway:   gateway.DefaultGatewayConfig(),
		Pending:   PendingConfig{TTLMinutes: 15, SweepSpec: "@every 1m"},
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// MessagesDelay is the pause between a typing indicator and its message.
func (c *Config) MessagesDelay() time.Duration { return ms(c.Messenger.MessagesDelayMs) }

// SubscribeDelay is how long after webhook verification the page subscribes.
func (c *Config) SubscribeDelay() time.Duration { return ms(c.Messenger.SubscribeDelayMs) }

// PendingTTL is the lifetime of a pending transfer.
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.Pending.TTLMinutes) * time.Minute
}

// Timeout converts a millisecond setting to a duration.
func Timeout(msec int) time.Duration { return ms(msec) }
