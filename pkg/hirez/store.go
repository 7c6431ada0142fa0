package hirez

import (
	"context"
	"sync"
	"time"
)

// SessionStore defines how the current session is cached between calls.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Get returns the cached session, or nil when none is cached or the
	// cached one has expired.
	Get(ctx context.Context) (*Session, error)

	// Put replaces the cached session.
	Put(ctx context.Context, s *Session) error

	// Delete drops the cached session if its id matches. A session
	// installed by another caller in the meantime must survive.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is the default in-process SessionStore.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Session
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.current.Valid(time.Now()) {
		return nil, nil
	}
	s := *m.current
	return &s, nil
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.current = &copied
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	return nil
}
