// Package pkce implements the client side of Proof Key for Code Exchange (RFC 7636).
//
// A verifier is a high-entropy random string kept by the client for the duration of
// an authorization-code flow. Its S256 challenge is sent with the authorization
// request; the verifier itself is sent with the token request so the authorization
// server can match the two.
//
// # Usage
//
//	verifier, err := pkce.GenerateVerifier()
//	if err != nil {
//		return err
//	}
//	challenge := pkce.Challenge(verifier)
//
//	// authorization request: code_challenge=challenge&code_challenge_method=S256
//	// token request:         code_verifier=verifier
//
// Verifiers are between 43 and 128 characters long (the length itself is random)
// and use only the unreserved URI characters A-Z a-z 0-9 - . _ ~.
//
// # Error Handling
//
//   - ErrEntropy: the random source failed or was exhausted
//   - ErrInvalidVerifier: Validate rejected a verifier's length or alphabet
package pkce
