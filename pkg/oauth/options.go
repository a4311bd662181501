package oauth

import (
	"io"
	"log/slog"
	"net/http"
)

// Option configures an OAuth provider or client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func defaultOptions() *options {
	return &options{
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., metrics, tracing).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
// Default: a logger that discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
