package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process credential store. It backs the server when no
// DATABASE_URL is configured and every handler test.
type Memory struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]string)}
}

// Insert records the credential unless the username is taken. The check
// and the write happen under one lock, so concurrent inserts for the same
// username admit exactly one winner.
func (m *Memory) Insert(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return ErrExists
	}
	m.users[username] = passwordHash
	return nil
}

// Lookup returns the stored hash for username.
func (m *Memory) Lookup(_ context.Context, username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hash, ok := m.users[username]
	if !ok {
		return "", ErrNotFound
	}
	return hash, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
