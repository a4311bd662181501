package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauth2-twitter/internal/server"
	"github.com/dmitrymomot/oauth2-twitter/pkg/pkce"
)

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	loc, cookie := env.login(t)

	require.Equal(t, "twitter.com", loc.Host)
	require.Equal(t, "/i/oauth2/authorize", loc.Path)

	q := loc.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "test-id", q.Get("client_id"))
	require.Equal(t, "tweet.read users.read offline.access", q.Get("scope"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))

	require.Equal(t, q.Get("state"), cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestLogin_InsecureCookies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, server.WithSecureCookies(false))
	_, cookie := env.login(t)
	require.False(t, cookie.Secure)
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		loc, cookie := env.login(t)

		rec := env.do(t, callbackURL(cookie.Value, "auth-code"), cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var body struct {
			User struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Username string `json:"username"`
				Picture  string `json:"picture"`
			} `json:"user"`
			Scope     string `json:"scope"`
			ExpiresAt string `json:"expires_at"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "42", body.User.ID)
		require.Equal(t, "Ada Lovelace", body.User.Name)
		require.Equal(t, "ada", body.User.Username)
		require.Equal(t, "https://pbs.twimg.com/ada.png", body.User.Picture)
		require.Equal(t, "tweet.read users.read offline.access", body.Scope)
		require.NotEmpty(t, body.ExpiresAt)

		verifier := env.stub.lastVerifier()
		require.NoError(t, pkce.Validate(verifier))
		require.Equal(t, loc.Query().Get("code_challenge"), pkce.Challenge(verifier))
	})

	t.Run("provider denied", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)

		rec := env.do(t, server.CallbackPath+"?error=access_denied&error_description=User+cancelled")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "access_denied", body["error"])
		require.Equal(t, "User cancelled", body["error_description"])
	})

	t.Run("missing state cookie", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		_, cookie := env.login(t)

		rec := env.do(t, callbackURL(cookie.Value, "auth-code"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_state")
	})

	t.Run("state from another browser", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		_, mine := env.login(t)
		_, theirs := env.login(t)

		rec := env.do(t, callbackURL(theirs.Value, "auth-code"), mine)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_state")
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		_, cookie := env.login(t)

		rec := env.do(t, server.CallbackPath+"?state="+cookie.Value, cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_request")
	})

	t.Run("replay", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		_, cookie := env.login(t)

		rec := env.do(t, callbackURL(cookie.Value, "auth-code"), cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, callbackURL(cookie.Value, "auth-code"), cookie)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_state")
	})

	t.Run("token endpoint rejects code", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)
		env.stub.tokenStatus = http.StatusBadRequest
		_, cookie := env.login(t)

		rec := env.do(t, callbackURL(cookie.Value, "bad-code"), cookie)
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "provider_error", body["error"])
		require.Equal(t, "Value passed for the authorization code was invalid.", body["error_description"])
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil)

		rec := env.do(t, server.HealthPath)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil,
			server.WithHealthCheck("verifier_store", func(context.Context) error { return nil }),
		)

		rec := env.do(t, server.HealthPath)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy","checks":{"verifier_store":{"status":"healthy"}}}`, rec.Body.String())
	})

	t.Run("failing check", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, nil,
			server.WithHealthCheck("verifier_store", func(context.Context) error { return errors.New("redis down") }),
			server.WithHealthCheck("other", func(context.Context) error { return nil }),
		)

		rec := env.do(t, server.HealthPath)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.JSONEq(t, `{
			"status":"unhealthy",
			"checks":{
				"verifier_store":{"status":"unhealthy","error":"redis down"},
				"other":{"status":"healthy"}
			}
		}`, rec.Body.String())
	})
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := server.NewMetrics("test")
	env := newTestEnv(t, m.InstrumentTransport, server.WithMetrics(m))

	_, cookie := env.login(t)
	rec := env.do(t, callbackURL(cookie.Value, "auth-code"), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, server.MetricsPath)
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)

	require.Contains(t, out, `test_logins_total{outcome="started"} 1`)
	require.Contains(t, out, `test_logins_total{outcome="completed"} 1`)
	require.Contains(t, out, `test_http_requests_total{method="GET",route="/auth/twitter/login",status="302"} 1`)
	require.Contains(t, out, `test_http_requests_total{method="GET",route="/auth/twitter/callback",status="200"} 1`)
	require.Contains(t, out, `test_provider_requests_total{code="200"`)
	require.Contains(t, out, "test_provider_requests_in_flight 0")
}

func TestMetrics_Disabled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	rec := env.do(t, server.MetricsPath)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
