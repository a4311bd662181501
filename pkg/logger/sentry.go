package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	minLevel, err := ParseLevel(cfg.MinLevel)
	if err != nil {
		return nil, err
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		return nil, fmt.Errorf("logger: sentry init: %w", err)
	}

	return sentryHandler(minLevel, nil), nil
}

// sentryHandler sends errors as issues and records from minLevel up as logs.
// A nil hub means the current hub. Credentials are redacted as on stdout.
func sentryHandler(minLevel slog.Level, hub *sentry.Hub) slog.Handler {
	return sentryslog.Option{
		EventLevel:  []slog.Level{slog.LevelError},
		LogLevel:    sentryLogLevels(minLevel),
		Hub:         hub,
		ReplaceAttr: redactAttr,
	}.NewSentryHandler(context.Background())
}

// sentryLogLevels lists the levels from minLevel up to error.
func sentryLogLevels(minLevel slog.Level) []slog.Level {
	var levels []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= minLevel {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		levels = []slog.Level{slog.LevelError}
	}
	return levels
}
