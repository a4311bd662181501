// Command twitter-login serves "Sign in with Twitter" endpoints.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/oauth2-twitter/internal/config"
	"github.com/dmitrymomot/oauth2-twitter/internal/server"
	"github.com/dmitrymomot/oauth2-twitter/pkg/logger"
	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
	"github.com/dmitrymomot/oauth2-twitter/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, server.RequestIDExtractor())
	if err != nil {
		return err
	}

	metrics := server.NewMetrics("")
	httpClient := &http.Client{
		Timeout:   cfg.HTTP.ProviderTimeout,
		Transport: metrics.InstrumentTransport(http.DefaultTransport),
	}

	client, err := oauth.NewTwitterClient(cfg.Twitter,
		oauth.WithHTTPClient(httpClient),
		oauth.WithLogger(log),
	)
	if err != nil {
		return err
	}

	var (
		store  oauth.VerifierStore
		checks []server.Option
		hooks  []func(context.Context) error
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store = oauth.NewRedisVerifierStore(rdb)
		checks = append(checks, server.WithHealthCheck("redis", redis.Healthcheck(rdb)))
		hooks = append(hooks, func(context.Context) error { return rdb.Close() })
		log.Info("verifier store: redis")
	} else {
		mem := oauth.NewMemoryVerifierStore()
		store = mem
		checks = append(checks, server.WithHealthCheck("verifier_store", mem.Healthcheck))
		hooks = append(hooks, func(context.Context) error { return mem.Close() })
		log.Warn("verifier store: memory; logins will not survive restarts or span instances")
	}

	flow := oauth.NewFlow(client, store,
		oauth.WithVerifierTTL(cfg.VerifierTTL),
		oauth.WithFlowLogger(log),
	)

	opts := append([]server.Option{
		server.WithLogger(log),
		server.WithMetrics(metrics),
		server.WithSecureCookies(cfg.HTTP.SecureCookies),
	}, checks...)

	return server.Run(ctx, server.RunConfig{
		Addr:            cfg.HTTP.Addr,
		Handler:         server.New(flow, opts...).Handler(),
		Logger:          log,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		ShutdownHooks:   hooks,
	})
}
