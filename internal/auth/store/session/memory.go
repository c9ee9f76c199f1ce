package session

import (
	"context"
	"sync"

	"giftlist/internal/auth"
	"giftlist/pkg/platform/sentinel"
)

// Memory is the in-memory session store for tests and dev mode. Expired
// sessions are reaped lazily by the auth service.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*auth.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*auth.Session)}
}

func (m *Memory) Save(ctx context.Context, session *auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[cp.ID] = &cp
	return nil
}

func (m *Memory) Find(ctx context.Context, id string) (*auth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
