package client

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// SessionStore persists the server session cookie between runs.
// The stored value is a Cookie header value ("name=value; other=value").
// An empty value means no session.
type SessionStore interface {
	LoadSession(ctx context.Context) (string, error)
	SaveSession(ctx context.Context, cookie string) error
	ClearSession(ctx context.Context) error
}

// MemorySessionStore keeps the session cookie in memory.
type MemorySessionStore struct {
	mu     sync.Mutex
	cookie string
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// LoadSession implements SessionStore.
func (s *MemorySessionStore) LoadSession(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookie, nil
}

// SaveSession implements SessionStore.
func (s *MemorySessionStore) SaveSession(_ context.Context, cookie string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = cookie
	return nil
}

// ClearSession implements SessionStore.
func (s *MemorySessionStore) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = ""
	return nil
}

// mergeCookies applies Set-Cookie values to a stored Cookie header value.
// Expired or emptied cookies are removed. The result is sorted by name so
// the stored value is stable.
func mergeCookies(stored string, updates []*http.Cookie) string {
	jar := make(map[string]string)
	if stored != "" {
		if parsed, err := http.ParseCookie(stored); err == nil {
			for _, c := range parsed {
				jar[c.Name] = c.Value
			}
		}
	}

	for _, c := range updates {
		if c.MaxAge < 0 || c.Value == "" {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = c.Value
	}

	names := make([]string, 0, len(jar))
	for name := range jar {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+jar[name])
	}
	return strings.Join(parts, "; ")
}
