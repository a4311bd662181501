package oauth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauth2-twitter/pkg/pkce"
)

const (
	// TwitterProviderName is the identifier for Twitter (X) OAuth provider.
	TwitterProviderName = "twitter"

	twitterAuthURL       = "https://twitter.com/i/oauth2/authorize"
	twitterTokenURL      = "https://api.twitter.com/2/oauth2/token"
	twitterUserURL       = "https://api.twitter.com/2/users/me"
	twitterUserFields    = "id,name,profile_image_url,username"
	twitterScopeSep      = " "
	twitterChallengeKey  = "code_challenge"
	twitterChallengeMeth = "code_challenge_method"
)

// TwitterDefaultScopes returns the default scopes for Twitter OAuth.
// offline.access makes the token endpoint issue a refresh token.
func TwitterDefaultScopes() []string {
	return []string{"tweet.read", "users.read", "offline.access"}
}

// TwitterProvider implements Provider for Twitter (X) OAuth 2.0 with PKCE.
//
// The provider keeps one PKCE verifier per instance, created on first use.
// Share an instance across concurrent logins only through Flow, which uses
// a fresh verifier for every login.
type TwitterProvider struct {
	clientID     string
	clientSecret string
	verifier     string
	mu           sync.Mutex
}

// NewTwitterProvider creates a new Twitter OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewTwitterProvider(cfg TwitterConfig) (*TwitterProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	return &TwitterProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}, nil
}

// NewTwitterClient creates a Client backed by a new TwitterProvider.
func NewTwitterClient(cfg TwitterConfig, opts ...Option) (*Client, error) {
	p, err := NewTwitterProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(p, cfg.ClientConfig(), opts...)
}

// Name returns the provider identifier.
func (p *TwitterProvider) Name() string {
	return TwitterProviderName
}

// PKCEVerifier returns the instance's verifier, generating it on first call.
// Concurrent first calls observe the same value.
func (p *TwitterProvider) PKCEVerifier() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verifier == "" {
		v, err := pkce.GenerateVerifier()
		if err != nil {
			return "", err
		}
		p.verifier = v
	}
	return p.verifier, nil
}

// PKCEChallenge returns the S256 challenge for verifier,
// or for the instance's own verifier when verifier is empty.
func (p *TwitterProvider) PKCEChallenge(verifier string) (string, error) {
	if verifier == "" {
		v, err := p.PKCEVerifier()
		if err != nil {
			return "", err
		}
		verifier = v
	}
	return pkce.Challenge(verifier), nil
}

// BaseAuthorizationURL returns the Twitter authorization page.
func (p *TwitterProvider) BaseAuthorizationURL() string {
	return twitterAuthURL
}

// AuthorizationParameters injects a PKCE challenge unless the caller supplied one.
// The returned map is a copy; params is left untouched.
func (p *TwitterProvider) AuthorizationParameters(params map[string]string) (map[string]string, error) {
	out := maps.Clone(params)
	if out == nil {
		out = make(map[string]string, 2)
	}

	if _, ok := out[twitterChallengeKey]; !ok {
		challenge, err := p.PKCEChallenge("")
		if err != nil {
			return nil, err
		}
		out[twitterChallengeKey] = challenge
		out[twitterChallengeMeth] = pkce.MethodS256
	}

	return out, nil
}

// BaseAccessTokenURL returns the Twitter token endpoint.
func (p *TwitterProvider) BaseAccessTokenURL(map[string]string) string {
	return twitterTokenURL
}

// AccessTokenRequest authenticates the token request with HTTP Basic client credentials.
// Credentials are validated by NewTwitterProvider, not here.
func (p *TwitterProvider) AccessTokenRequest(req *http.Request) (*http.Request, error) {
	creds := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	req.Header.Set("Authorization", "Basic "+creds)
	return req, nil
}

// ResourceOwnerDetailsURL returns the authenticated user endpoint.
func (p *TwitterProvider) ResourceOwnerDetailsURL(*oauth2.Token) string {
	return twitterUserURL
}

// FetchResourceOwnerDetails retrieves the authenticated user's profile.
// Returns ErrInvalidResponseFormat if the body is not a JSON object.
func (p *TwitterProvider) FetchResourceOwnerDetails(ctx context.Context, r Requester, token *oauth2.Token) (map[string]any, error) {
	u := p.ResourceOwnerDetailsURL(token) + "?" + url.Values{"user.fields": {twitterUserFields}}.Encode()

	req, err := r.AuthenticatedRequest(ctx, http.MethodGet, u, token)
	if err != nil {
		return nil, err
	}

	body, err := r.ParsedResponse(req)
	if err != nil {
		return nil, err
	}

	details, ok := body.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrInvalidResponseFormat, fmt.Errorf("users/me returned %T", body))
	}
	return details, nil
}

// DefaultScopes returns TwitterDefaultScopes.
func (p *TwitterProvider) DefaultScopes() []string {
	return TwitterDefaultScopes()
}

// ScopeSeparator returns a single space; Twitter rejects comma-separated scopes.
func (p *TwitterProvider) ScopeSeparator() string {
	return twitterScopeSep
}

// CheckResponse treats HTTP 200 as success whatever the body holds.
// Any other status yields a *ProviderError built from error_description and code.
func (p *TwitterProvider) CheckResponse(statusCode int, body any) error {
	if statusCode == http.StatusOK {
		return nil
	}

	perr := &ProviderError{
		Provider:   TwitterProviderName,
		StatusCode: statusCode,
		Code:       strconv.Itoa(statusCode),
		Raw:        body,
	}

	if m, ok := body.(map[string]any); ok {
		if msg, ok := m["error_description"]; ok && msg != nil {
			perr.Message = stringify(msg)
		}
		if code, ok := m["code"]; ok && code != nil {
			perr.Code = stringify(code)
		}
	}

	return perr
}

// CreateResourceOwner wraps the profile in a TwitterUser.
func (p *TwitterProvider) CreateResourceOwner(body map[string]any, _ *oauth2.Token) (ResourceOwner, error) {
	return NewTwitterUser(body), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

var (
	_ Provider       = (*TwitterProvider)(nil)
	_ VerifierSource = (*TwitterProvider)(nil)
)
