package identity

import (
	"context"
	"sync"
)

// Store persists the cached username. An empty string means no identity.
type Store interface {
	LoadIdentity(ctx context.Context) (string, error)
	SaveIdentity(ctx context.Context, username string) error
	ClearIdentity(ctx context.Context) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.Mutex
	username string
}

// NewMemoryStore creates a store holding username.
func NewMemoryStore(username string) *MemoryStore {
	return &MemoryStore{username: username}
}

// LoadIdentity implements Store.
func (s *MemoryStore) LoadIdentity(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username, nil
}

// SaveIdentity implements Store.
func (s *MemoryStore) SaveIdentity(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	return nil
}

// ClearIdentity implements Store.
func (s *MemoryStore) ClearIdentity(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	return nil
}
