package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/oauth2-twitter/pkg/logger"
	"github.com/dmitrymomot/oauth2-twitter/pkg/oauth"
)

// Route paths.
const (
	LoginPath    = "/auth/twitter/login"
	CallbackPath = "/auth/twitter/callback"
	HealthPath   = "/healthz"
	MetricsPath  = "/metrics"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Server serves the Twitter login endpoints.
type Server struct {
	flow          *oauth.Flow
	logger        *slog.Logger
	metrics       *Metrics
	checks        map[string]CheckFunc
	secureCookies bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables route instrumentation and the /metrics endpoint.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHealthCheck adds a named check to /healthz.
func WithHealthCheck(name string, fn CheckFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.checks[name] = fn
		}
	}
}

// WithSecureCookies sets the Secure flag on the login state cookie.
// Default: true.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// New creates a Server that runs logins through flow.
func New(flow *oauth.Flow, opts ...Option) *Server {
	s := &Server{
		flow:          flow,
		logger:        logger.NewNope(),
		checks:        make(map[string]CheckFunc),
		secureCookies: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(s.logRequests)

	r.Get(LoginPath, s.login)
	r.Get(CallbackPath, s.callback)
	r.Get(HealthPath, s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, MetricsPath, s.metrics.Handler())
	}

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("route", routePattern(r)),
			slog.Int("status", ww.Status()),
		)
	})
}

// routePattern returns the matched chi pattern, or "unmatched" for 404s,
// so raw paths never become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
