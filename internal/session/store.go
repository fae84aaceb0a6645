package session

import (
	"context"
	"sync"
)

// Store persists per-actor conversation state. A missing record reads
// as Idle.
type Store interface {
	Get(ctx context.Context, actorID int64) (State, error)
	Set(ctx context.Context, actorID int64, state State) error
	Clear(ctx context.Context, actorID int64) error
}

// MemoryStore keeps conversation state in process memory. Suitable for
// tests and single-instance deployments without Redis.
type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (m *MemoryStore) Get(_ context.Context, actorID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[actorID]; ok {
		return s, nil
	}
	return Idle(), nil
}

func (m *MemoryStore) Set(_ context.Context, actorID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[actorID] = state
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, actorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, actorID)
	return nil
}
