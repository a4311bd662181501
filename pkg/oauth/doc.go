// Package oauth implements the OAuth2 authorization code flow with PKCE for
// Twitter (X) on top of a provider-agnostic client.
//
// The package separates what every OAuth2 login has in common from what a
// particular provider does differently. Client owns the generic protocol:
// building authorization URLs, exchanging codes, refreshing tokens and sending
// authenticated requests. A Provider supplies the endpoints, scopes, extra
// authorization parameters, token request authentication, error
// classification and the resource owner type. TwitterProvider is the Provider
// for Twitter's v2 API.
//
// # Features
//
//   - PKCE (RFC 7636) with S256 challenges injected into authorization URLs
//   - HTTP Basic client authentication on the token endpoint
//   - Twitter v2 profile lookup with id, name, username and profile image
//   - Token refresh with deduplication of concurrent refreshes
//   - Flow and VerifierStore for per-login verifiers across requests and instances
//   - Sentinel errors with "oauth:" prefix and typed ProviderError / MissingFieldError
//
// # Usage
//
// A single login with the provider's own verifier:
//
//	client, err := oauth.NewTwitterClient(oauth.TwitterConfig{
//		ClientID:     os.Getenv("TWITTER_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("TWITTER_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/twitter/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	authURL, err := client.AuthCodeURL(state)
//
//	// in the callback handler
//	token, err := client.Exchange(ctx, code)
//	owner, err := client.ResourceOwner(ctx, token)
//	user := owner.(*oauth.TwitterUser)
//
// TwitterProvider keeps one verifier for its lifetime, which suits a single
// login. Servers handling many users should use Flow, which generates a
// verifier per login and keeps it in a VerifierStore keyed by state:
//
//	flow := oauth.NewFlow(client, oauth.NewRedisVerifierStore(rdb))
//
//	authURL, state, err := flow.Begin(ctx)
//	// redirect the user to authURL
//
//	token, err := flow.Complete(ctx, r.URL.Query().Get("state"), r.URL.Query().Get("code"))
//
// # Error Handling
//
//   - ErrMissingClientID, ErrMissingClientSecret: constructor called without credentials
//   - ErrFetchFailed, ErrNilResponse: transport failures talking to the provider
//   - ErrRequestFailed: wrapped by *ProviderError for any non-200 provider response
//   - ErrDecodeFailed: token response without a usable access token
//   - ErrInvalidResponseFormat: profile response is not a JSON object
//   - ErrMissingField: wrapped by *MissingFieldError when a profile field is absent
//   - ErrInvalidState: unknown, expired or replayed login state
//
// Use errors.As to inspect provider failures:
//
//	var perr *oauth.ProviderError
//	if errors.As(err, &perr) {
//		log.Println(perr.StatusCode, perr.Code, perr.Message)
//	}
//
// # Security
//
//   - Always validate the state parameter; Flow does this for you
//   - Never log verifiers or tokens
//   - Use HTTPS redirect URIs in production
//   - Keep client secrets out of source control (use environment variables)
package oauth
