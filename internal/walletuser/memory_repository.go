package walletuser

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]User
}

// NewMemoryRepository builds an in-memory wallet user store. Ids start at 1.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) GetOrCreate(_ context.Context, phoneNumber string, now time.Time) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[phoneNumber]; ok {
		return user, false, nil
	}
	r.nextID++
	user := User{ID: r.nextID, PhoneNumber: phoneNumber, CreatedAt: now}
	r.users[phoneNumber] = user
	return user, true, nil
}
