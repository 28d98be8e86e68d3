package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/conversebank/internal/shared/cmdutils"
	"github.com/crystaldolphin/conversebank/internal/shared/stringutils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show conversebank status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s conversebank Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, cmdutils.Check(statErr == nil))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Valid:     %s %v\n", cmdutils.Check(false), err)
	} else {
		fmt.Printf("Valid:     %s\n", cmdutils.Check(true))
	}

	fmt.Println("\nMessenger:")
	fmt.Printf("  %-18s %s\n", "Graph API", cfg.Messenger.GraphAPIURL)
	fmt.Printf("  %-18s %s\n", "Page token", secret(cfg.Messenger.PageAccessToken))
	fmt.Printf("  %-18s %s\n", "Verify token", secret(cfg.Messenger.VerifyToken))
	fmt.Printf("  %-18s %d chars, %dms pacing\n", "Text", cfg.Messenger.TextLimit, cfg.Messenger.MessagesDelayMs)

	fmt.Println("\nNLU:")
	fmt.Printf("  %-18s %s\n", "Endpoint", cfg.NLU.BaseURL)
	fmt.Printf("  %-18s %s\n", "Access token", secret(cfg.NLU.AccessToken))
	fmt.Printf("  %-18s %s\n", "Language", cfg.NLU.Lang)

	fmt.Println("\nBanking:")
	fmt.Printf("  %-18s %s\n", "Onboard", cfg.Banking.OnboardURL)
	fmt.Printf("  %-18s %s\n", "Transfer", cfg.Banking.TransferURL)
	fmt.Printf("  %-18s %s\n", "Balance", cfg.Banking.BalanceURL)

	fmt.Println("\nGateway:")
	fmt.Printf("  %-18s %s:%d\n", "Listen", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("  %-18s %s\n", "App URL", orUnset(cfg.Gateway.AppURL))
	fmt.Printf("  %-18s %s\n", "Slack alerts", cmdutils.Check(cfg.Alert.SlackWebhookURL != ""))
	fmt.Printf("  %-18s %s\n", "Monitor feed", cmdutils.Check(cfg.Monitor.Enabled))
	return nil
}

func secret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return stringutils.Mask(s)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
