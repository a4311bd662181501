package oauth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauth2-twitter/pkg/pkce"
)

// Flow runs PKCE-protected logins on top of a Client.
// Every login gets its own verifier, stored under the login's state until the
// callback arrives, so one Flow can serve any number of concurrent logins.
type Flow struct {
	client   *Client
	store    VerifierStore
	newState func() string
	logger   *slog.Logger
	ttl      time.Duration
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithVerifierTTL sets how long a login may take between Begin and Complete.
// Default: 10 minutes.
func WithVerifierTTL(d time.Duration) FlowOption {
	return func(f *Flow) {
		if d > 0 {
			f.ttl = d
		}
	}
}

// WithStateGenerator sets the function producing state values.
// Default: random UUIDv4.
func WithStateGenerator(fn func() string) FlowOption {
	return func(f *Flow) {
		if fn != nil {
			f.newState = fn
		}
	}
}

// WithFlowLogger sets the logger for login diagnostics.
func WithFlowLogger(l *slog.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFlow creates a Flow that keeps verifiers in store.
func NewFlow(c *Client, store VerifierStore, opts ...FlowOption) *Flow {
	f := &Flow{
		client:   c,
		store:    store,
		newState: uuid.NewString,
		logger:   c.logger,
		ttl:      10 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin starts a login. It returns the authorization URL to redirect the user to
// and the state that identifies the login on callback.
func (f *Flow) Begin(ctx context.Context, params ...Param) (authURL, state string, err error) {
	verifier, err := pkce.GenerateVerifier()
	if err != nil {
		return "", "", err
	}

	state = f.newState()
	if err := f.store.Save(ctx, state, verifier, f.ttl); err != nil {
		return "", "", errors.Join(errors.New("oauth: save verifier"), err)
	}

	params = append(slices.Clip(params), WithCodeChallenge(pkce.Challenge(verifier)))
	authURL, err = f.client.AuthCodeURL(state, params...)
	if err != nil {
		_, _ = f.store.Pop(ctx, state)
		return "", "", err
	}

	f.logger.DebugContext(ctx, "login started", slog.String("state", state))
	return authURL, state, nil
}

// Complete finishes the login identified by state, exchanging code for a token.
// A state is accepted once; replays and expired logins fail with ErrInvalidState.
func (f *Flow) Complete(ctx context.Context, state, code string, params ...Param) (*oauth2.Token, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	verifier, err := f.store.Pop(ctx, state)
	if err != nil {
		if errors.Is(err, ErrVerifierNotFound) {
			return nil, errors.Join(ErrInvalidState, err)
		}
		return nil, err
	}
	if err := pkce.Validate(verifier); err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}

	params = append(slices.Clip(params), WithCodeVerifier(verifier))
	tok, err := f.client.Exchange(ctx, code, params...)
	if err != nil {
		return nil, err
	}

	f.logger.DebugContext(ctx, "login completed", slog.String("state", state))
	return tok, nil
}

// Client returns the underlying client.
func (f *Flow) Client() *Client {
	return f.client
}
