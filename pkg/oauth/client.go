package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

// Client runs the authorization-code flow for a single Provider.
// It is safe for concurrent use.
type Client struct {
	provider   Provider
	httpClient *http.Client
	logger     *slog.Logger
	refreshes  singleflight.Group
	cfg        Config
}

// NewClient creates a client for the given provider.
// Returns an error if the provider is nil or ClientID is empty.
// Provider default scopes are used when cfg.Scopes is empty.
func NewClient(p Provider, cfg Config, opts ...Option) (*Client, error) {
	if p == nil {
		return nil, ErrMissingProvider
	}
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if len(cfg.Scopes) == 0 {
		cfg.Scopes = p.DefaultScopes()
	}

	return &Client{
		provider:   p,
		httpClient: o.httpClient,
		logger:     o.logger.With(slog.String("provider", p.Name())),
		cfg:        cfg,
	}, nil
}

// Provider returns the provider the client was built with.
func (c *Client) Provider() Provider {
	return c.provider
}

// Scopes returns the scopes requested by the client.
func (c *Client) Scopes() []string {
	return append([]string(nil), c.cfg.Scopes...)
}

// AuthCodeURL builds the authorization URL the user is redirected to.
// Params override the defaults and are then passed through the provider's
// AuthorizationParameters.
func (c *Client) AuthCodeURL(state string, params ...Param) (string, error) {
	values := map[string]string{
		"response_type": "code",
		"client_id":     c.cfg.ClientID,
		"scope":         strings.Join(c.cfg.Scopes, c.provider.ScopeSeparator()),
	}
	if state != "" {
		values["state"] = state
	}
	if c.cfg.RedirectURL != "" {
		values["redirect_uri"] = c.cfg.RedirectURL
	}
	applyParams(values, params)

	values, err := c.provider.AuthorizationParameters(values)
	if err != nil {
		return "", fmt.Errorf("authorization parameters: %w", err)
	}

	base := c.provider.BaseAuthorizationURL()
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + encodeValues(values).Encode(), nil
}

// Exchange trades an authorization code for tokens.
// If no code_verifier param is given and the provider implements VerifierSource,
// the provider's verifier is sent.
func (c *Client) Exchange(ctx context.Context, code string, params ...Param) (*oauth2.Token, error) {
	values := map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
		"client_id":  c.cfg.ClientID,
	}
	if c.cfg.RedirectURL != "" {
		values["redirect_uri"] = c.cfg.RedirectURL
	}
	applyParams(values, params)

	if _, ok := values["code_verifier"]; !ok {
		if vs, ok := c.provider.(VerifierSource); ok {
			verifier, err := vs.PKCEVerifier()
			if err != nil {
				return nil, fmt.Errorf("pkce verifier: %w", err)
			}
			values["code_verifier"] = verifier
		}
	}

	return c.requestToken(ctx, values)
}

// Refresh obtains a new token with the refresh_token grant.
// Concurrent refreshes of the same refresh token share a single request.
// The shared request outlives any single caller's cancellation; each caller
// still returns as soon as its own ctx is done. Every caller gets its own copy
// of the token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	shared := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.requestToken(shared, map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     c.cfg.ClientID,
		})
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		tok := *res.Val.(*oauth2.Token)
		return &tok, nil
	}
}

// TokenSource returns a source that yields tok until it expires and refreshes it afterwards.
func (c *Client) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	r := &refresher{ctx: ctx, client: c}
	if tok != nil {
		r.refreshToken = tok.RefreshToken
	}
	return oauth2.ReuseTokenSource(tok, r)
}

// HTTPClient returns an HTTP client that authenticates requests with tok,
// refreshing it when it expires.
func (c *Client) HTTPClient(ctx context.Context, tok *oauth2.Token) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, c.TokenSource(ctx, tok))
}

// ResourceOwner fetches and wraps the profile of the token's owner.
func (c *Client) ResourceOwner(ctx context.Context, tok *oauth2.Token) (ResourceOwner, error) {
	details, err := c.provider.FetchResourceOwnerDetails(ctx, c, tok)
	if err != nil {
		return nil, err
	}
	return c.provider.CreateResourceOwner(details, tok)
}

// AuthenticatedRequest builds a request carrying tok as a bearer credential.
func (c *Client) AuthenticatedRequest(ctx context.Context, method, rawURL string, tok *oauth2.Token) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return AttachBearerAuth(req, tok), nil
}

// ParsedResponse sends req and returns its decoded JSON body.
// At most 1 MiB of the body is read. Bodies that fail to decode are returned
// as a string so the provider can still classify them.
func (c *Client) ParsedResponse(req *http.Request) (any, error) {
	ctx := req.Context()
	endpoint := req.URL.Host + req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("%s %s: %w", req.Method, endpoint, err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from %s", endpoint))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read body from %s: %w", endpoint, err))
	}

	c.logger.DebugContext(ctx, "provider response",
		slog.String("method", req.Method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
	)

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		parsed = string(raw)
	}

	if err := c.provider.CheckResponse(resp.StatusCode, parsed); err != nil {
		c.logger.WarnContext(ctx, "provider rejected request",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return parsed, nil
}

func (c *Client) requestToken(ctx context.Context, values map[string]string) (*oauth2.Token, error) {
	body := encodeValues(values).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.BaseAccessTokenURL(values), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	req, err = c.provider.AccessTokenRequest(req)
	if err != nil {
		return nil, fmt.Errorf("access token request: %w", err)
	}

	parsed, err := c.ParsedResponse(req)
	if err != nil {
		return nil, err
	}

	m, ok := parsed.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("token response is %T, want JSON object", parsed))
	}
	return tokenFromResponse(m)
}

func tokenFromResponse(m map[string]any) (*oauth2.Token, error) {
	access, _ := m["access_token"].(string)
	if access == "" {
		return nil, errors.Join(ErrDecodeFailed, errors.New("token response has no access_token"))
	}

	tok := &oauth2.Token{AccessToken: access}
	tok.TokenType, _ = m["token_type"].(string)
	tok.RefreshToken, _ = m["refresh_token"].(string)

	switch v := m["expires_in"].(type) {
	case float64:
		tok.ExpiresIn = int64(v)
	case string:
		_, _ = fmt.Sscan(v, &tok.ExpiresIn)
	}
	if tok.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	return tok.WithExtra(maps.Clone(m)), nil
}

// refresher adapts Client.Refresh to oauth2.TokenSource.
// Calls are serialized by oauth2.ReuseTokenSource.
type refresher struct {
	ctx          context.Context
	client       *Client
	refreshToken string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	tok, err := r.client.Refresh(r.ctx, r.refreshToken)
	if err != nil {
		return nil, err
	}
	// Twitter rotates refresh tokens; keep the old one if none is returned.
	if tok.RefreshToken == "" {
		tok.RefreshToken = r.refreshToken
	}
	r.refreshToken = tok.RefreshToken
	return tok, nil
}

func applyParams(m map[string]string, params []Param) {
	for _, p := range params {
		if p != nil {
			p(m)
		}
	}
}

func encodeValues(m map[string]string) url.Values {
	v := make(url.Values, len(m))
	for k, val := range m {
		v.Set(k, val)
	}
	return v
}
