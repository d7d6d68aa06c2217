package tokenstore

import (
	"context"
	"sync"
)

// Storage is the device-local key/value store the cache is persisted in.
// Each write call applies all of its keys in one batch. Update sets and
// removes keys in the same batch.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	MultiSet(ctx context.Context, values map[string]string) error
	MultiRemove(ctx context.Context, keys ...string) error
	Update(ctx context.Context, set map[string]string, remove []string) error
}

// MemoryStorage keeps values in process memory. It backs tests and the
// memory token store of the CLI.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage builds an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) MultiSet(ctx context.Context, values map[string]string) error {
	return s.Update(ctx, values, nil)
}

func (s *MemoryStorage) MultiRemove(ctx context.Context, keys ...string) error {
	return s.Update(ctx, nil, keys)
}

func (s *MemoryStorage) Update(_ context.Context, set map[string]string, remove []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	applyUpdate(s.values, set, remove)
	return nil
}

// applyUpdate removes first so a key named in both ends up set.
func applyUpdate(values, set map[string]string, remove []string) {
	for _, k := range remove {
		delete(values, k)
	}
	for k, v := range set {
		values[k] = v
	}
}

// Len reports the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
