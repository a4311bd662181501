package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStoreOption configures RedisVerifierStore.
type RedisStoreOption func(*RedisVerifierStore)

// WithKeyPrefix sets the key prefix. Keys are stored as "{prefix}:{state}".
// Default: "oauth:pkce".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisVerifierStore) {
		s.prefix = prefix
	}
}

// RedisVerifierStore keeps verifiers in Redis so any instance can finish a login.
type RedisVerifierStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisVerifierStore creates a Redis-backed store.
// The client lifecycle is managed by the caller.
func NewRedisVerifierStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisVerifierStore {
	s := &RedisVerifierStore{
		client: client,
		prefix: "oauth:pkce",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores verifier under state. A non-positive ttl never expires.
func (s *RedisVerifierStore) Save(ctx context.Context, state, verifier string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(state), verifier, max(ttl, 0)).Err()
}

// Pop atomically reads and deletes the verifier with GETDEL,
// so a state cannot be redeemed twice even across instances.
func (s *RedisVerifierStore) Pop(ctx context.Context, state string) (string, error) {
	v, err := s.client.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrVerifierNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *RedisVerifierStore) key(state string) string {
	if s.prefix == "" {
		return state
	}
	return s.prefix + ":" + state
}

var _ VerifierStore = (*RedisVerifierStore)(nil)
