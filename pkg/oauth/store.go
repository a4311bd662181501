package oauth

import (
	"context"
	"sync"
	"time"
)

// VerifierStore keeps PKCE verifiers between the authorization redirect and the callback.
type VerifierStore interface {
	// Save stores verifier under state for ttl.
	Save(ctx context.Context, state, verifier string, ttl time.Duration) error

	// Pop returns and removes the verifier stored under state.
	// Returns ErrVerifierNotFound if there is none or it has expired.
	Pop(ctx context.Context, state string) (string, error)
}

// MemoryStoreOption configures MemoryVerifierStore.
type MemoryStoreOption func(*MemoryVerifierStore)

// WithCleanupInterval sets how often expired verifiers are removed
// by the background janitor goroutine. Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryVerifierStore) {
		s.cleanupInterval = d
	}
}

type verifierEntry struct {
	expiresAt time.Time
	verifier  string
}

// MemoryVerifierStore is an in-process VerifierStore.
// Use it for single-instance deployments; use RedisVerifierStore when
// the callback may reach a different instance than the redirect.
type MemoryVerifierStore struct {
	items           map[string]verifierEntry
	done            chan struct{}
	cleanupInterval time.Duration
	mu              sync.Mutex
	closeOnce       sync.Once
}

// NewMemoryVerifierStore creates a memory store. Call Close to stop the janitor.
func NewMemoryVerifierStore(opts ...MemoryStoreOption) *MemoryVerifierStore {
	s := &MemoryVerifierStore{
		items:           make(map[string]verifierEntry),
		done:            make(chan struct{}),
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupInterval > 0 {
		go s.janitor()
	}

	return s
}

// Save stores verifier under state. A non-positive ttl never expires.
func (s *MemoryVerifierStore) Save(_ context.Context, state, verifier string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.items[state] = verifierEntry{verifier: verifier, expiresAt: expiresAt}
	return nil
}

// Pop returns and removes the verifier stored under state.
func (s *MemoryVerifierStore) Pop(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[state]
	if !ok {
		return "", ErrVerifierNotFound
	}
	delete(s.items, state)

	if e.expired(time.Now()) {
		return "", ErrVerifierNotFound
	}
	return e.verifier, nil
}

// Len returns the number of stored verifiers, including expired ones not yet cleaned up.
func (s *MemoryVerifierStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Healthcheck always succeeds. It lets the memory store sit behind a health endpoint.
func (s *MemoryVerifierStore) Healthcheck(context.Context) error {
	return nil
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *MemoryVerifierStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *MemoryVerifierStore) janitor() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryVerifierStore) deleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for state, e := range s.items {
		if e.expired(now) {
			delete(s.items, state)
		}
	}
}

func (e verifierEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

var _ VerifierStore = (*MemoryVerifierStore)(nil)
