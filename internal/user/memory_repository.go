package user

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byPhone map[string]User
}

// NewMemoryRepository builds an in-memory user store for tests and local
// development. It enforces the same uniqueness rules as the Postgres
// implementation.
func NewMemoryRepository() Repository {
	return &memoryRepository{byPhone: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPhone[u.Phone]; exists {
		return ErrPhoneExists
	}
	for _, existing := range r.byPhone {
		if existing.InviteCode == u.InviteCode {
			return ErrInviteCodeExists
		}
	}
	r.byPhone[u.Phone] = u
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byPhone {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byPhone[phone]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) FindByInviteCode(_ context.Context, code string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byPhone {
		if u.InviteCode == code {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) SetActivatedInviteCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for phone, u := range r.byPhone {
		if u.ID != id {
			continue
		}
		if u.HasActivated() {
			return ErrAlreadyActivated
		}
		u.ActivatedInviteCode = code
		r.byPhone[phone] = u
		return nil
	}
	return ErrNotFound
}

func (r *memoryRepository) ListReferralPhones(_ context.Context, inviteCode string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	phones := []string{}
	for _, u := range r.byPhone {
		if u.ActivatedInviteCode == inviteCode {
			phones = append(phones, u.Phone)
		}
	}
	sort.Strings(phones)
	return phones, nil
}
