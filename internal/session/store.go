// Package session holds the in-memory session store. Sessions are created
// on login, looked up on every request bearing the cookie, and never
// survive a restart.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const tokenBytes = 16 // 32 hex characters on the wire

// DefaultTTL is the fixed session lifetime when none is configured.
const DefaultTTL = 12 * time.Hour

// Session correlates a cookie token to an authenticated identity. Values
// handed out by the store are copies; the store owns the canonical state.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
}

// Store is a mutex-guarded token -> session map with a fixed TTL.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

// NewStore creates a store with the given TTL; ttl <= 0 uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create mints an unguessable fixed-length token for username and records
// the session.
func (s *Store) Create(username string) (Session, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}

	sess := Session{
		Token:     hex.EncodeToString(buf),
		Username:  username,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess, nil
}

// Lookup returns the session for token. Expired sessions are pruned on
// the spot and reported as absent.
func (s *Store) Lookup(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	if s.now().Sub(sess.CreatedAt) > s.ttl {
		s.Revoke(token)
		return Session{}, false
	}
	return sess, true
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len reports the number of live (possibly expired, not yet pruned)
// sessions. Used by tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
