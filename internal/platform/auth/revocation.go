package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore records tokens that must no longer be accepted, either one
// at a time (logout) or all tokens of a user issued up to a cutoff.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	RevokeUser(ctx context.Context, userID string, at time.Time) error
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

// MemoryRevocationStore keeps revocations in process memory. Entries are
// dropped once the tokens they cover have expired anyway.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
	users   map[string]time.Time // user id -> cutoff
	maxTTL  time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMemoryRevocationStore creates a store and starts a background cleanup
// loop. maxTTL is the longest lifetime a token can have.
func NewMemoryRevocationStore(maxTTL time.Duration) *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		users:   make(map[string]time.Time),
		maxTTL:  maxTTL,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) RevokeUser(_ context.Context, userID string, at time.Time) error {
	at = at.Truncate(time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[userID]; !ok || at.After(prev) {
		s.users[userID] = at
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entries[claims.ID]; ok {
		return true, nil
	}
	if cutoff, ok := s.users[claims.Subject]; ok && claims.IssuedAt != nil {
		return !claims.IssuedAt.Time.After(cutoff), nil
	}
	return false, nil
}

// Count returns the number of individually revoked tokens.
func (s *MemoryRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background cleanup goroutine. Safe to call more than once.
func (s *MemoryRevocationStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.cleanup(now)
		}
	}
}

func (s *MemoryRevocationStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for jti, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, jti)
		}
	}
	for userID, cutoff := range s.users {
		if now.After(cutoff.Add(s.maxTTL)) {
			delete(s.users, userID)
		}
	}
}
