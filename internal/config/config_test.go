package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauth2-twitter/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TWITTER_OAUTH_CLIENT_ID", "id")
	t.Setenv("TWITTER_OAUTH_CLIENT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "id", cfg.Twitter.ClientID)
	require.Equal(t, "secret", cfg.Twitter.ClientSecret)
	require.Empty(t, cfg.Twitter.Scopes)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	require.True(t, cfg.HTTP.SecureCookies)
	require.Equal(t, 10*time.Minute, cfg.VerifierTTL)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.False(t, cfg.Redis.Enabled())
	require.Equal(t, 3, cfg.Redis.ConnectTries)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TWITTER_OAUTH_REDIRECT_URL", "https://example.com/auth/twitter/callback")
	t.Setenv("TWITTER_OAUTH_SCOPES", "users.read,tweet.read")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("OAUTH_VERIFIER_TTL", "2m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "https://example.com/auth/twitter/callback", cfg.Twitter.RedirectURL)
	require.Equal(t, []string{"users.read", "tweet.read"}, cfg.Twitter.Scopes)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	require.Equal(t, 2*time.Minute, cfg.VerifierTTL)
	require.True(t, cfg.Redis.Enabled())
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("TWITTER_OAUTH_CLIENT_ID", "")
	t.Setenv("TWITTER_OAUTH_CLIENT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("OAUTH_VERIFIER_TTL", "0s")

	_, err := config.Load()
	require.Error(t, err)
}
