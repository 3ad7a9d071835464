package testfixtures

import (
	"context"
	"sync"

	"github.com/wkwkland69/piketeisd/internal/persistence"
)

// MemoryStore is an in-memory persistence.KeyValueStore for tests. The
// optional error fields let tests simulate substrate failures per operation.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	GetErr    error
	SetErr    error
	DeleteErr error

	SetCalls    int
	DeleteCalls int
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Seed stores value under key without counting as a tracked write.
func (s *MemoryStore) Seed(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Get implements persistence.KeyValueStore.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if s.GetErr != nil {
		return "", s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return value, nil
}

// Set implements persistence.KeyValueStore.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	s.values[key] = value
	s.SetCalls++
	s.mu.Unlock()
	return nil
}

// Delete implements persistence.KeyValueStore.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	delete(s.values, key)
	s.DeleteCalls++
	s.mu.Unlock()
	return nil
}

// Value returns the stored value and whether the key exists.
func (s *MemoryStore) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}
