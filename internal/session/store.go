// internal/session/store.go
package session

import (
	"context"
	"sync"
	"time"

	apperrors "csv-chat/internal/common/errors"
)

// Store persists sessions. Implementations: in-memory (default) and Redis.
type Store interface {
	// Put creates or replaces a session.
	Put(ctx context.Context, s *Session) error
	// Get returns the session or a SESSION_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes a session; deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory with a TTL checked on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewMemoryStore creates an in-memory store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get returns a snapshot of the session. Callers never share memory with a
// later Put on the same session, so readers and writers cannot race.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	var snapshot Session
	if ok {
		snapshot = *s
	}
	m.mu.RUnlock()

	if ok && m.ttl > 0 && time.Since(snapshot.LastActiveAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		ok = false
	}

	if !ok {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	return &snapshot, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
