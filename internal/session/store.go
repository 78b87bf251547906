package session

import (
	"context"
	"sync"
	"time"
)

// Store persists sessions by id.
type Store interface {
	// Get returns the session, or (nil, nil) when it is missing or expired.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that need expired sessions swept.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// MemoryStore keeps encoded sessions in a map. Sessions are copied in and
// out, so callers never share state.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	exp  map[string]time.Time
	now  func() time.Time
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Purger = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		exp:  make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	raw, ok := m.data[id]
	exp := m.exp[id]
	m.mu.RUnlock()
	if !ok || !exp.After(m.now()) {
		return nil, nil
	}
	return Unmarshal(raw)
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	raw, err := Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.ID] = raw
	m.exp[s.ID] = s.ExpiresAt
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	delete(m.exp, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, exp := range m.exp {
		if !exp.After(now) {
			delete(m.data, id)
			delete(m.exp, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
