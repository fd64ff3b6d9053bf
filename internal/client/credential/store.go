// Package credential holds the session token. The store is the single source
// of truth for whether a session is active: the pipeline reads it on every
// request and clears it on authentication failure, and the session manager
// writes it on login. Constructed once per process and injected.
package credential

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store persists and serves the session token. Implementations must be safe
// for concurrent use: token reads and 401-triggered clears race with logins.
type Store interface {
	// Get returns the stored token, or "" when no session is active.
	Get() string
	// Set stores a new token, replacing any previous one.
	Set(token string) error
	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear() error
	// Active reports whether a token is currently stored.
	Active() bool
}

// Expiry returns the expiry of a token's exp claim, parsed without signature
// verification. Returns the zero time for opaque or claim-less tokens; the
// server remains the authority, this only lets the client skip attaching a
// token it knows is dead.
func Expiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// MemStore is an in-memory Store, used in tests and short-lived sessions.
type MemStore struct {
	mu    sync.Mutex
	token string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemStore) Active() bool {
	return s.Get() != ""
}
