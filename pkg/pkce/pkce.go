package pkce

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// MethodS256 is the only challenge method this package produces.
	MethodS256 = "S256"

	// MinVerifierLength is the shortest verifier allowed by RFC 7636.
	MinVerifierLength = 43

	// MaxVerifierLength is the longest verifier allowed by RFC 7636.
	MaxVerifierLength = 128

	// Alphabet is the set of unreserved characters a verifier is drawn from.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-._~"
)

var (
	// ErrEntropy is returned when the random source fails.
	ErrEntropy = errors.New("pkce: failed to read random source")

	// ErrInvalidVerifier is returned when a verifier does not satisfy RFC 7636.
	ErrInvalidVerifier = errors.New("pkce: invalid verifier")
)

// Rejection thresholds: the largest multiple of n that fits in a byte.
var (
	alphabetLimit = byte(256 - 256%len(Alphabet))
	lengthSpan    = MaxVerifierLength - MinVerifierLength + 1
	lengthLimit   = byte(256 - 256%lengthSpan)
)

// GenerateVerifier returns a new verifier read from crypto/rand.
func GenerateVerifier() (string, error) {
	return GenerateVerifierFrom(rand.Reader)
}

// GenerateVerifierFrom returns a new verifier using r as the entropy source.
// Both the length and every character are chosen uniformly; biased bytes are
// rejected rather than folded with a modulo.
func GenerateVerifierFrom(r io.Reader) (string, error) {
	n, err := uniformByte(r, lengthLimit, lengthSpan)
	if err != nil {
		return "", err
	}
	length := MinVerifierLength + n

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", errors.Join(ErrEntropy, err)
		}
		for _, b := range buf {
			if b >= alphabetLimit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// Challenge derives the S256 code challenge for verifier:
// base64url without padding of SHA-256 over the verifier bytes.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// Validate reports whether verifier has an allowed length and alphabet.
func Validate(verifier string) error {
	if len(verifier) < MinVerifierLength || len(verifier) > MaxVerifierLength {
		return errors.Join(ErrInvalidVerifier, fmt.Errorf("length %d out of range [%d, %d]", len(verifier), MinVerifierLength, MaxVerifierLength))
	}
	if i := strings.IndexFunc(verifier, func(r rune) bool { return !strings.ContainsRune(Alphabet, r) }); i >= 0 {
		return errors.Join(ErrInvalidVerifier, fmt.Errorf("character %q at position %d is not allowed", verifier[i], i))
	}
	return nil
}

func uniformByte(r io.Reader, limit byte, n int) (int, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, errors.Join(ErrEntropy, err)
		}
		if b[0] < limit {
			return int(b[0]) % n, nil
		}
	}
}
