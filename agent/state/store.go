package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
)

// Store is the persistence contract used by the session runner.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps sessions in a mutex-guarded map. It is safe for
// concurrent access across independent session keys; callers that need
// per-session turn ordering serialize above this layer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Load(ctx context.Context, key string) (*Session, error) {
	if key == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s)
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if err := s.Validate(); err != nil {
		return err
	}

	clone, err := cloneSession(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[s.Key()] = clone
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

// cloneSession deep-copies through JSON so stored state never aliases the
// caller's message slices.
func cloneSession(s *Session) (*Session, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	var out Session
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	return &out, nil
}
