package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
)

// StateCookie binds a login's state to the browser that started it.
const StateCookie = "twitter_oauth_state"

// Login outcomes recorded in metrics.
const (
	outcomeStarted      = "started"
	outcomeCompleted    = "completed"
	outcomeDenied       = "denied"
	outcomeInvalidState = "invalid_state"
	outcomeFailed       = "failed"
)

type profileResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Picture  string `json:"picture,omitempty"`
}

type callbackResponse struct {
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	User      profileResponse `json:"user"`
	Scope     string          `json:"scope,omitempty"`
}

// userInfoer is implemented by resource owners that map onto oauth.UserInfo.
type userInfoer interface {
	UserInfo() (*oauth.UserInfo, error)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authURL, state, err := s.flow.Begin(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "start login", slog.String("error", err.Error()))
		s.metrics.recordLogin(outcomeFailed)
		writeError(w, http.StatusInternalServerError, "server_error", "could not start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/auth/twitter",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	s.metrics.recordLogin(outcomeStarted)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	// The state cookie is single use whatever the outcome.
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Path:     "/auth/twitter",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if e := q.Get("error"); e != "" {
		s.logger.InfoContext(ctx, "login denied by provider", slog.String("reason", e))
		s.metrics.recordLogin(outcomeDenied)
		writeError(w, http.StatusBadRequest, e, q.Get("error_description"))
		return
	}

	state := q.Get("state")
	cookie, err := r.Cookie(StateCookie)
	if err != nil || state == "" || cookie.Value != state {
		s.metrics.recordLogin(outcomeInvalidState)
		writeError(w, http.StatusBadRequest, "invalid_state", "login state does not match this browser")
		return
	}

	code := q.Get("code")
	if code == "" {
		s.metrics.recordLogin(outcomeFailed)
		writeError(w, http.StatusBadRequest, "invalid_request", "missing authorization code")
		return
	}

	tok, err := s.flow.Complete(ctx, state, code)
	if err != nil {
		s.fail(w, r, "exchange code", err)
		return
	}

	owner, err := s.flow.Client().ResourceOwner(ctx, tok)
	if err != nil {
		s.fail(w, r, "fetch profile", err)
		return
	}

	ui, ok := owner.(userInfoer)
	if !ok {
		s.fail(w, r, "map profile", errors.New("resource owner has no user info"))
		return
	}
	info, err := ui.UserInfo()
	if err != nil {
		s.fail(w, r, "map profile", err)
		return
	}

	resp := callbackResponse{
		User: profileResponse{
			ID:       info.ID,
			Name:     info.Name,
			Username: info.Username,
			Picture:  info.Picture,
		},
	}
	resp.Scope, _ = tok.Extra("scope").(string)
	if !tok.Expiry.IsZero() {
		resp.ExpiresAt = &tok.Expiry
	}

	s.logger.InfoContext(ctx, "login completed", slog.String("user_id", info.ID))
	s.metrics.recordLogin(outcomeCompleted)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()

	if errors.Is(err, oauth.ErrInvalidState) {
		s.logger.WarnContext(ctx, op, slog.String("error", err.Error()))
		s.metrics.recordLogin(outcomeInvalidState)
		writeError(w, http.StatusBadRequest, "invalid_state", "login expired or already completed")
		return
	}

	s.metrics.recordLogin(outcomeFailed)

	var perr *oauth.ProviderError
	if errors.As(err, &perr) {
		s.logger.WarnContext(ctx, op,
			slog.String("error", err.Error()),
			slog.Int("provider_status", perr.StatusCode),
		)
		writeError(w, http.StatusBadGateway, "provider_error", perr.Message)
		return
	}

	s.logger.ErrorContext(ctx, op, slog.String("error", err.Error()))
	writeError(w, http.StatusBadGateway, "provider_unavailable", "")
}
