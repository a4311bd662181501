package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauth2-twitter/pkg/pkce"
)

// Provider supplies the provider-specific parts of an authorization-code flow.
// The generic Client drives the flow and calls these extension points; a provider
// never sends requests on its own except through the Requester it is handed.
type Provider interface {
	// Name returns the provider identifier (e.g., "twitter").
	Name() string

	// BaseAuthorizationURL returns the authorization page endpoint without query.
	BaseAuthorizationURL() string

	// AuthorizationParameters receives the merged authorization query parameters and
	// returns the final set. Implementations must not mutate params in place.
	AuthorizationParameters(params map[string]string) (map[string]string, error)

	// BaseAccessTokenURL returns the token endpoint for the given token request params.
	BaseAccessTokenURL(params map[string]string) string

	// AccessTokenRequest decorates the token request built by the client
	// (e.g., with client authentication headers) and hands it back.
	AccessTokenRequest(req *http.Request) (*http.Request, error)

	// ResourceOwnerDetailsURL returns the profile endpoint for the token's owner.
	ResourceOwnerDetailsURL(token *oauth2.Token) string

	// FetchResourceOwnerDetails loads the raw profile using the client's plumbing.
	FetchResourceOwnerDetails(ctx context.Context, r Requester, token *oauth2.Token) (map[string]any, error)

	// DefaultScopes returns the scopes requested when none are configured.
	DefaultScopes() []string

	// ScopeSeparator joins scopes in the authorization request.
	ScopeSeparator() string

	// CheckResponse classifies a parsed provider response.
	// It returns nil on success and a *ProviderError otherwise.
	CheckResponse(statusCode int, body any) error

	// CreateResourceOwner wraps a fetched profile.
	CreateResourceOwner(body map[string]any, token *oauth2.Token) (ResourceOwner, error)
}

// Requester is the request plumbing a Client lends to providers.
type Requester interface {
	// AuthenticatedRequest builds a request carrying the token as a bearer credential.
	AuthenticatedRequest(ctx context.Context, method, rawURL string, token *oauth2.Token) (*http.Request, error)

	// ParsedResponse sends req, decodes the JSON body and runs the provider's CheckResponse.
	// Bodies that are not valid JSON are returned as a string.
	ParsedResponse(req *http.Request) (any, error)
}

// VerifierSource is implemented by providers that keep a PKCE verifier of their own.
// Client.Exchange sends it as code_verifier unless the caller passes one.
type VerifierSource interface {
	PKCEVerifier() (string, error)
}

// ResourceOwner is the authenticated end user returned by a provider.
type ResourceOwner interface {
	// ID returns the provider's unique user identifier.
	ID() (string, error)

	// ToMap returns the raw profile data.
	ToMap() map[string]any
}

// UserInfo represents provider-agnostic user information.
type UserInfo struct {
	ID       string // Provider's unique user identifier
	Name     string
	Username string
	Picture  string
}

// Param sets a single request parameter for AuthCodeURL or Exchange.
type Param func(map[string]string)

// SetParam returns a Param that sets key to value.
func SetParam(key, value string) Param {
	return func(m map[string]string) {
		m[key] = value
	}
}

// WithCodeVerifier sends the PKCE verifier with the token request.
func WithCodeVerifier(verifier string) Param {
	return SetParam("code_verifier", verifier)
}

// WithCodeChallenge sets an explicit S256 PKCE challenge on the authorization request.
// Providers that inject their own challenge leave an explicit one untouched.
func WithCodeChallenge(challenge string) Param {
	return func(m map[string]string) {
		m["code_challenge"] = challenge
		m["code_challenge_method"] = pkce.MethodS256
	}
}
