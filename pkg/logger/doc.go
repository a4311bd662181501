// Package logger builds log/slog loggers from environment configuration.
//
// Loggers write JSON or text to stdout at a configured level. Every record
// passes through context extractors, which add request-scoped attributes such
// as request IDs, and through a redaction step that masks OAuth credentials
// (access and refresh tokens, authorization codes, PKCE verifiers, client
// secrets) by attribute key.
//
// # Usage
//
//	log, err := logger.New(logger.Config{Level: "debug", Format: "text"}, requestIDExtractor)
//	if err != nil {
//		return err
//	}
//	log.InfoContext(ctx, "login started", slog.String("state", state))
//
// A ContextExtractor returns false to skip its attribute for a record:
//
//	requestIDExtractor := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok && id != ""
//	}
//
// # Sentry
//
// When Config.Sentry.DSN is set, records are also sent to Sentry: errors
// create issues and records at or above Sentry.MinLevel are stored as logs.
// If Sentry fails to initialize, the logger keeps writing to stdout only.
//
// Use NewNope where a logger is required but output is not wanted, such as tests.
package logger
