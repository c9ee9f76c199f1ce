package user

import (
	"context"
	"strings"
	"sync"

	"giftlist/internal/auth"
	"giftlist/pkg/platform/sentinel"
)

// Memory is the in-memory user store for tests and dev mode.
type Memory struct {
	mu     sync.RWMutex
	users  map[int64]*auth.User
	nextID int64
}

func NewMemory() *Memory {
	return &Memory{users: make(map[int64]*auth.User)}
}

func (m *Memory) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (m *Memory) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, sentinel.ErrAlreadyUsed
		}
	}
	cp := *user
	m.nextID++
	cp.ID = m.nextID
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}
