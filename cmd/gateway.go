package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/conversebank/internal/dependency"
)

var (
	gatewayPort    int
	gatewayVerbose bool
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the webhook server and bot loop",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().IntVarP(&gatewayPort, "port", "p", 0, "Gateway port (overrides config and PORT)")
	gatewayCmd.Flags().BoolVarP(&gatewayVerbose, "verbose", "v", false, "Verbose logging")
}

func runGateway(_ *cobra.Command, _ []string) error {
	if gatewayVerbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if gatewayPort > 0 {
		cfg.Gateway.Port = gatewayPort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w (edit %s)", err, resolvedConfigPath())
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s Starting conversebank gateway on port %d...\n", logo, cfg.Gateway.Port)

	pending := c.Pending()
	cronSvc := c.CronService()
	if _, err := cronSvc.AddJob("pending-sweep", cfg.Pending.SweepSpec, func(context.Context) error {
		if n := pending.Sweep(); n > 0 {
			slog.Info("expired pending transfers removed", "count", n)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("schedule pending sweep: %w", err)
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if enabled := c.Channels().EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	}
	if cfg.Monitor.Enabled {
		fmt.Println("✓ Monitor feed at /monitor/ws")
	}

	g.Go(func() error { return c.BotLoop().Run(gctx) })
	g.Go(func() error { return c.Channels().Run(gctx) })
	g.Go(func() error { return cronSvc.Start(gctx) })
	g.Go(func() error { return c.Server().Start(gctx) })
	g.Go(func() error {
		if err := c.Platform().Subscribe(gctx); err != nil {
			slog.Warn("startup subscribe failed", "err", err)
		}
		return nil
	})

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
