package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// verifyWebhook answers the platform's verification handshake and, on
// success, subscribes the app to the page after the configured delay.
func (s *Server) verifyWebhook(c echo.Context) error {
	if s.opts.VerifyToken == "" || c.QueryParam("hub.verify_token") != s.opts.VerifyToken {
		slog.Warn("webhook verification failed")
		return c.String(http.StatusForbidden, "Error, wrong validation token")
	}

	if s.subscriber != nil {
		s.after(s.opts.SubscribeDelay, func() {
			if err := s.subscriber.Subscribe(context.Background()); err != nil {
				slog.Error("subscribe failed", "err", err)
				return
			}
			slog.Info("subscribed to page")
		})
	}
	return c.String(http.StatusOK, c.QueryParam("hub.challenge"))
}

func (s *Server) receiveWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err == nil {
		err = s.webhook.HandleWebhook(c.Request().Context(), body)
	}
	if err != nil {
		slog.Warn("webhook rejected", "err", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
