// Package dependency wires conversebank services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/crystaldolphin/conversebank/internal/alert"
	"github.com/crystaldolphin/conversebank/internal/banking"
	"github.com/crystaldolphin/conversebank/internal/bot"
	"github.com/crystaldolphin/conversebank/internal/bus"
	"github.com/crystaldolphin/conversebank/internal/channels"
	"github.com/crystaldolphin/conversebank/internal/config"
	"github.com/crystaldolphin/conversebank/internal/cron"
	"github.com/crystaldolphin/conversebank/internal/delivery"
	"github.com/crystaldolphin/conversebank/internal/messenger"
	"github.com/crystaldolphin/conversebank/internal/monitor"
	"github.com/crystaldolphin/conversebank/internal/nlu"
	"github.com/crystaldolphin/conversebank/internal/server"
	"github.com/crystaldolphin/conversebank/internal/session"
)

const busBuffer = 100

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg       *config.Config
	msgBus    *bus.MessageBus
	platform  *messenger.Client
	loop      *bot.Loop
	channels  *channels.Manager
	server    *server.Server
	cronSvc   *cron.Service
	pending   *session.PendingStore
	hub       *monitor.Hub
	messenger *channels.MessengerChannel
}

func (c *Container) Config() *config.Config                { return c.cfg }
func (c *Container) MessageBus() *bus.MessageBus           { return c.msgBus }
func (c *Container) Platform() *messenger.Client           { return c.platform }
func (c *Container) BotLoop() *bot.Loop                    { return c.loop }
func (c *Container) Channels() *channels.Manager           { return c.channels }
func (c *Container) Server() *server.Server                { return c.server }
func (c *Container) CronService() *cron.Service            { return c.cronSvc }
func (c *Container) Pending() *session.PendingStore        { return c.pending }
func (c *Container) Monitor() *monitor.Hub                 { return c.hub }
func (c *Container) Messenger() *channels.MessengerChannel { return c.messenger }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newMessageBus,
		session.NewManager,
		newPendingStore,
		newPlatformClient,
		newNLUClient,
		newBankingClient,
		monitor.NewHub,
		newNotifier,
		newDeliveryEngine,
		newBotLoop,
		newTransactions,
		newMessengerChannel,
		newChannelManager,
		cron.NewService,
		newServer,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, fmt.Errorf("provide: %w", err)
		}
	}

	result := &Container{cfg: cfg}
	err := d.Invoke(func(
		msgBus *bus.MessageBus,
		platform *messenger.Client,
		loop *bot.Loop,
		mgr *channels.Manager,
		srv *server.Server,
		cronSvc *cron.Service,
		pending *session.PendingStore,
		hub *monitor.Hub,
		mc *channels.MessengerChannel,
	) {
		result.msgBus = msgBus
		result.platform = platform
		result.loop = loop
		result.channels = mgr
		result.server = srv
		result.cronSvc = cronSvc
		result.pending = pending
		result.hub = hub
		result.messenger = mc
	})
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", err)
	}
	return result, nil
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(busBuffer)
}

func newPendingStore(cfg *config.Config) *session.PendingStore {
	return session.NewPendingStore(cfg.PendingTTL())
}

func newPlatformClient(cfg *config.Config) *messenger.Client {
	m := cfg.Messenger
	return messenger.NewClient(m.GraphAPIURL, m.PageAccessToken, config.Timeout(m.TimeoutMs))
}

func newNLUClient(cfg *config.Config) *nlu.Client {
	n := cfg.NLU
	return nlu.NewClient(n.BaseURL, n.AccessToken, n.Lang, config.Timeout(n.TimeoutMs))
}

func newBankingClient(cfg *config.Config) *banking.Client {
	b := cfg.Banking
	return banking.NewClient(banking.Endpoints{
		Onboard:  b.OnboardURL,
		Transfer: b.TransferURL,
		Balance:  b.BalanceURL,
	}, b.Retries, config.Timeout(b.TimeoutMs))
}

// newNotifier returns nil when no Slack webhook is configured.
func newNotifier(cfg *config.Config) bot.Notifier {
	n := alert.NewSlackNotifier(cfg.Alert.SlackWebhookURL)
	if !n.Enabled() {
		return nil
	}
	return n
}

func newDeliveryEngine(cfg *config.Config, platform *messenger.Client, hub *monitor.Hub) *delivery.Engine {
	var opts []delivery.Option
	if cfg.Monitor.Enabled {
		opts = append(opts, delivery.WithObserver(hub.Observe))
	}
	return delivery.NewEngine(platform, cfg.MessagesDelay(), opts...)
}

func newBotLoop(
	cfg *config.Config,
	b *bus.MessageBus,
	sessions *session.Manager,
	pending *session.PendingStore,
	agent *nlu.Client,
	engine *delivery.Engine,
	notifier bot.Notifier,
) *bot.Loop {
	settings := bot.Settings{AppURL: cfg.Gateway.AppURL, TextLimit: cfg.Messenger.TextLimit}
	return bot.NewLoop(b, settings, sessions, pending, agent, engine, notifier)
}

func newTransactions(bank *banking.Client, pending *session.PendingStore, b *bus.MessageBus) *bot.Transactions {
	return bot.NewTransactions(bank, pending, b)
}

func newMessengerChannel(cfg *config.Config, b *bus.MessageBus, platform *messenger.Client) *channels.MessengerChannel {
	return channels.NewMessengerChannel(b, platform, cfg.Messenger.AllowFrom, cfg.Messenger.TextLimit)
}

func newChannelManager(b *bus.MessageBus, mc *channels.MessengerChannel) *channels.Manager {
	return channels.NewManager(b, mc)
}

func newServer(
	cfg *config.Config,
	mc *channels.MessengerChannel,
	platform *messenger.Client,
	tx *bot.Transactions,
	hub *monitor.Hub,
) *server.Server {
	opts := server.Options{
		Addr:           fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port),
		VerifyToken:    cfg.Messenger.VerifyToken,
		AppURL:         cfg.Gateway.AppURL,
		PublicDir:      cfg.Gateway.PublicDir,
		ViewsDir:       cfg.Gateway.ViewsDir,
		SubscribeDelay: cfg.SubscribeDelay(),
	}
	if cfg.Monitor.Enabled {
		opts.Monitor = hub
	}
	return server.New(opts, mc, platform, tx)
}
