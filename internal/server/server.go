// Package server exposes the HTTP surface: the Messenger webhook, the
// web-view pages and their form handlers, and the operator monitor feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/crystaldolphin/conversebank/internal/bot"
)

const shutdownTimeout = 10 * time.Second

// Webhook consumes a raw webhook POST body.
type Webhook interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

// Subscriber subscribes the app to the page after verification.
type Subscriber interface {
	Subscribe(ctx context.Context) error
}

// Forms executes the banking operations behind the web views.
type Forms interface {
	Onboard(ctx context.Context, sender string, form bot.OnboardForm)
	Transfer(ctx context.Context, sender, ref, pin string)
	Balance(ctx context.Context, sender, pin string)
}

// Options configures a Server.
type Options struct {
	Addr           string
	VerifyToken    string
	AppURL         string
	PublicDir      string
	ViewsDir       string
	SubscribeDelay time.Duration
	Monitor        http.Handler // nil disables /monitor/ws
}

// Server is the echo application.
type Server struct {
	e          *echo.Echo
	opts       Options
	webhook    Webhook
	subscriber Subscriber
	forms      Forms

	// go runs background work started by a request.
	goFn func(func())
	// after schedules fn once d has elapsed.
	after func(d time.Duration, fn func())
}

// New builds the routes.
func New(opts Options, webhook Webhook, subscriber Subscriber, forms Forms) *Server {
	s := &Server{
		e:          echo.New(),
		opts:       opts,
		webhook:    webhook,
		subscriber: subscriber,
		forms:      forms,
		goFn:       func(fn func()) { go fn() },
		after:      func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Validator = &formValidator{v: validator.New()}
	s.e.Use(middleware.Recover())
	s.e.Use(requestLogger())
	s.routes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) routes() {
	s.e.GET("/webhook/", s.verifyWebhook)
	s.e.POST("/webhook/", s.receiveWebhook)

	s.e.GET(bot.PathOnboardPage, s.view("customer_onboarded.html"))
	s.e.GET(bot.PathTransferPage, s.view("transfer.html"))
	s.e.GET(bot.PathBalancePage, s.view("balance_enquiry.html"))
	s.e.GET(loaderPath, func(c echo.Context) error {
		return c.File(filepath.Join(s.opts.PublicDir, "img", "loader_icon.gif"))
	})

	s.e.GET("/customer_onboarded", s.onboard)
	s.e.GET("/transfer", s.transfer)
	s.e.GET("/balance_enquiry", s.balance)

	if s.opts.Monitor != nil {
		s.e.GET("/monitor/ws", echo.WrapHandler(s.opts.Monitor))
	}
	if s.opts.PublicDir != "" {
		s.e.Static("/", s.opts.PublicDir)
	}
}

func (s *Server) view(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(filepath.Join(s.opts.ViewsDir, name))
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.opts.Addr)
		if err := s.e.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return ctx.Err()
}

type formValidator struct {
	v *validator.Validate
}

func (f *formValidator) Validate(i any) error {
	return f.v.Struct(i)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("request failed", append(attrs, "err", v.Error)...)
				return nil
			}
			slog.Debug("request", attrs...)
			return nil
		},
	})
}
