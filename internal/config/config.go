// Package config loads the login server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/oauth2-twitter/pkg/logger"
	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
	"github.com/dmitrymomot/oauth2-twitter/pkg/redis"
)

// Config is the full configuration of cmd/twitter-login.
type Config struct {
	Twitter oauth.TwitterConfig
	Log     logger.Config
	Redis   redis.Config
	HTTP    HTTPConfig
	// VerifierTTL bounds the time between the login redirect and the callback.
	VerifierTTL time.Duration `env:"OAUTH_VERIFIER_TTL" envDefault:"10m"`
}

// HTTPConfig configures the HTTP listener and the provider client.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ProviderTimeout time.Duration `env:"HTTP_PROVIDER_TIMEOUT" envDefault:"15s"`
	// SecureCookies marks the login state cookie Secure; disable only for local HTTP.
	SecureCookies bool `env:"HTTP_SECURE_COOKIES" envDefault:"true"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.VerifierTTL <= 0 {
		return Config{}, fmt.Errorf("config: OAUTH_VERIFIER_TTL must be positive, got %s", cfg.VerifierTTL)
	}
	return cfg, nil
}
