package session

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Record
}

// NewMemoryRepository builds an in-memory session store for tests and development.
func NewMemoryRepository() Repository {
	return &memoryRepository{sessions: make(map[string]Record)}
}

func (r *memoryRepository) Upsert(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[rec.PhoneNumber]; ok {
		rec.CreatedAt = existing.CreatedAt
	}
	r.sessions[rec.PhoneNumber] = rec
	return nil
}

func (r *memoryRepository) FindActive(_ context.Context, phoneNumber string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.sessions[phoneNumber]
	if !ok || !rec.Active {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepository) UpdateAccessToken(_ context.Context, phoneNumber, accessToken string, expiresAt, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[phoneNumber]
	if !ok || !rec.Active {
		return ErrNotFound
	}
	rec.AccessToken = accessToken
	rec.AccessTokenExpiresAt = expiresAt
	rec.UpdatedAt = updatedAt
	r.sessions[phoneNumber] = rec
	return nil
}

func (r *memoryRepository) Deactivate(_ context.Context, phoneNumber string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[phoneNumber]
	if !ok || !rec.Active {
		return ErrNotFound
	}
	rec.Active = false
	rec.UpdatedAt = updatedAt
	r.sessions[phoneNumber] = rec
	return nil
}
