package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrMissingProvider is returned when a client is constructed without a provider.
	ErrMissingProvider = errors.New("oauth: missing provider")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-OK status.
	// *ProviderError unwraps to it.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrInvalidResponseFormat is returned when the provider answers with a JSON
	// value of the wrong shape, e.g. a scalar or array where an object is expected.
	ErrInvalidResponseFormat = errors.New("oauth: invalid response format, expected JSON object")

	// ErrMissingField is returned by resource owner accessors for absent fields.
	// *MissingFieldError unwraps to it.
	ErrMissingField = errors.New("oauth: missing field in resource owner data")

	// ErrInvalidState is returned when a callback carries an unknown or expired state.
	ErrInvalidState = errors.New("oauth: invalid or expired state")

	// ErrNoRefreshToken is returned when a token must be refreshed but carries no refresh token.
	ErrNoRefreshToken = errors.New("oauth: token expired and refresh token is not set")

	// ErrVerifierNotFound is returned by a VerifierStore when no verifier is stored
	// under the given state.
	ErrVerifierNotFound = errors.New("oauth: verifier not found")
)

// ProviderError is returned when the identity provider rejects a request.
// Code is the provider's own error code when present, otherwise the HTTP status.
type ProviderError struct {
	Raw        any
	Provider   string
	Message    string
	Code       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("oauth: %s error: code=%s status=%d", e.Provider, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("oauth: %s error: %s (code=%s status=%d)", e.Provider, e.Message, e.Code, e.StatusCode)
}

// Unwrap makes errors.Is(err, ErrRequestFailed) hold for provider errors.
func (e *ProviderError) Unwrap() error {
	return ErrRequestFailed
}

// MissingFieldError names the resource owner field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("oauth: missing field %q in resource owner data", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
