package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/crystaldolphin/conversebank/internal/bot"
)

const (
	loaderPath   = "/loader/loader_icon.gif"
	closeWindow  = "https://www.messenger.com/closeWindow/"
	redirectText = "Redirecting to chat room"
)

type onboardQuery struct {
	Sender        string `query:"sender" validate:"required"`
	PIN           string `query:"pin" validate:"required"`
	BVN           string `query:"bvn" validate:"required"`
	AccountNumber string `query:"account_number" validate:"required"`
}

type transferQuery struct {
	Sender string `query:"sender" validate:"required"`
	Ref    string `query:"ref" validate:"required"`
	PIN    string `query:"pin" validate:"required"`
}

type pinQuery struct {
	Sender string `query:"sender" validate:"required"`
	PIN    string `query:"pin" validate:"required"`
}

func (s *Server) onboard(c echo.Context) error {
	var q onboardQuery
	if err := s.bindForm(c, &q); err != nil {
		return err
	}
	form := bot.OnboardForm{PIN: q.PIN, BVN: q.BVN, AccountNumber: q.AccountNumber}
	s.background(func(ctx context.Context) { s.forms.Onboard(ctx, q.Sender, form) })
	return s.closeWindow(c)
}

func (s *Server) transfer(c echo.Context) error {
	var q transferQuery
	if err := s.bindForm(c, &q); err != nil {
		return err
	}
	s.background(func(ctx context.Context) { s.forms.Transfer(ctx, q.Sender, q.Ref, q.PIN) })
	return s.closeWindow(c)
}

func (s *Server) balance(c echo.Context) error {
	var q pinQuery
	if err := s.bindForm(c, &q); err != nil {
		return err
	}
	s.background(func(ctx context.Context) { s.forms.Balance(ctx, q.Sender, q.PIN) })
	return s.closeWindow(c)
}

func (s *Server) bindForm(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(dst); err != nil {
		slog.Info("incomplete form", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "missing form fields")
	}
	return nil
}

// background runs fn detached from the request so the redirect is not held
// up by the bank.
func (s *Server) background(fn func(ctx context.Context)) {
	s.goFn(func() { fn(context.Background()) })
}

func (s *Server) closeWindow(c echo.Context) error {
	return c.Redirect(http.StatusFound, CloseWindowURL(s.opts.AppURL))
}

// CloseWindowURL is the Messenger URL that closes the web view and returns
// the user to the conversation.
func CloseWindowURL(appURL string) string {
	return closeWindow + "?image_url=" + url.QueryEscape(appURL+loaderPath) +
		"&display_text=" + url.QueryEscape(redirectText)
}
