package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/conversebank/internal/bot"
	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/config"
	"github.com/crystaldolphin/conversebank/internal/delivery"
	"github.com/crystaldolphin/conversebank/internal/messenger"
	"github.com/crystaldolphin/conversebank/internal/nlu"
	"github.com/crystaldolphin/conversebank/internal/session"
	"github.com/crystaldolphin/conversebank/internal/shared/cmdutils"
)

const queryTimeout = time.Minute

var (
	queryMessage string
	querySender  string
)

// queryCmd runs turns against the NLU agent and prints the Messenger
// payloads that would be sent, without touching the Send API.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run turns against the agent and print the rendered messages",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryMessage, "message", "m", "", "Send a single message and exit")
	queryCmd.Flags().StringVarP(&querySender, "sender", "s", "console", "Sender ID used for the session")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// consolePlatform prints outbound items instead of sending them.
type consolePlatform struct{}

func (consolePlatform) SendMessage(_ context.Context, _ string, msg messenger.Message) error {
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return err
	}
	cmdutils.PrintBanner(string(msg.Kind()), string(data))
	return nil
}

func (consolePlatform) SendSenderAction(_ context.Context, _ string, action messenger.SenderAction) error {
	fmt.Printf("  ↳ %s\n", action)
	return nil
}

func runQuery(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.NLU.AccessToken == "" {
		return fmt.Errorf("nlu.accessToken is not set (edit %s)", resolvedConfigPath())
	}

	loop := newConsoleLoop(cfg)

	if queryMessage != "" {
		return runTurn(context.Background(), loop, queryMessage)
	}
	return runInteractive(loop)
}

func newConsoleLoop(cfg *config.Config) *bot.Loop {
	agent := nlu.NewClient(cfg.NLU.BaseURL, cfg.NLU.AccessToken, cfg.NLU.Lang, config.Timeout(cfg.NLU.TimeoutMs))
	engine := delivery.NewEngine(consolePlatform{}, 0)
	settings := bot.Settings{AppURL: cfg.Gateway.AppURL, TextLimit: cfg.Messenger.TextLimit}
	return bot.NewLoop(bus.NewMessageBus(1), settings, session.NewManager(),
		session.NewPendingStore(cfg.PendingTTL()), agent, engine, nil)
}

func runTurn(ctx context.Context, loop *bot.Loop, text string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return loop.ProcessTurn(ctx, bus.NewInboundMessage(bus.ChannelConsole, querySender, text, nil))
}

// runInteractive reads lines from stdin and runs one turn per line.
func runInteractive(loop *bot.Loop) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("You: ")
		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return nil
		}

		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}
		if err := runTurn(ctx, loop, line); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		}
	}
}
