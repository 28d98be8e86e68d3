package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/conversebank/internal/config"
	"github.com/crystaldolphin/conversebank/internal/messenger"
)

const setupTimeout = 30 * time.Second

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "One-shot Messenger page setup",
}

func init() {
	setupCmd.AddCommand(setupSubscribeCmd)
	setupCmd.AddCommand(setupGetStartedCmd)
}

var setupSubscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe the app to the page's webhook events",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withPlatform(func(ctx context.Context, c *messenger.Client) error {
			if err := c.Subscribe(ctx); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			fmt.Println("✓ Subscribed")
			return nil
		})
	},
}

var setupGetStartedCmd = &cobra.Command{
	Use:   "get-started",
	Short: "Install the Get Started button",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withPlatform(func(ctx context.Context, c *messenger.Client) error {
			if err := c.SetGetStarted(ctx, messenger.PayloadWelcome); err != nil {
				return fmt.Errorf("get started: %w", err)
			}
			fmt.Printf("✓ Get Started button posts %s\n", messenger.PayloadWelcome)
			return nil
		})
	},
}

func withPlatform(fn func(ctx context.Context, c *messenger.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Messenger.PageAccessToken == "" {
		return fmt.Errorf("messenger.pageAccessToken is not set (edit %s)", resolvedConfigPath())
	}
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	m := cfg.Messenger
	return fn(ctx, messenger.NewClient(m.GraphAPIURL, m.PageAccessToken, config.Timeout(m.TimeoutMs)))
}
