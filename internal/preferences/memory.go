package preferences

import (
	"context"
	"sync"

	"github.com/ivanoskov/equilibra/internal/auth"
)

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	sessions map[int64]auth.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]string),
		sessions: make(map[int64]auth.Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveSession(_ context.Context, chatID int64, session auth.Session) error {
	m.mu.Lock()
	m.sessions[chatID] = session
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadSessions(context.Context) (map[int64]auth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]auth.Session, len(m.sessions))
	for k, v := range m.sessions {
		out[k] = v
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
