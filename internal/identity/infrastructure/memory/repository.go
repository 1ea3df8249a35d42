package memory

import (
	"context"
	"strings"
	"sync"

	identity "invoicing-cloud/internal/identity/domain"
)

// UserRepository is an in-memory repository for users.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]identity.User
	byUsername map[string]string
}

// NewUserRepository constructs a repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]identity.User),
		byUsername: make(map[string]string),
	}
}

// Create stores a user; usernames and emails are unique ignoring case.
func (r *UserRepository) Create(ctx context.Context, user identity.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[strings.ToLower(user.Username)]; ok {
		return identity.ErrUserExists
	}
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return identity.ErrUserExists
		}
	}
	r.byID[user.ID] = user
	r.byUsername[strings.ToLower(user.Username)] = user.ID
	return nil
}

// GetByID loads a user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetByUsername loads a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, nil
	}
	user := r.byID[id]
	return &user, nil
}
