package memory

import (
	"context"
	"sort"
	"sync"

	profiles "invoicing-cloud/internal/profiles/domain"
)

// Repository is an in-memory profile and account store.
type Repository struct {
	mu       sync.RWMutex
	profiles map[string]profiles.Profile
	accounts map[string]profiles.Account
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{
		profiles: make(map[string]profiles.Profile),
		accounts: make(map[string]profiles.Account),
	}
}

// GetProfile loads a user's profile.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*profiles.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// CreateProfile stores a new profile.
func (r *Repository) CreateProfile(ctx context.Context, profile profiles.Profile) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; ok {
		return profiles.ErrProfileExists
	}
	r.profiles[profile.UserID] = profile
	return nil
}

// SaveProfile overwrites an existing profile.
func (r *Repository) SaveProfile(ctx context.Context, profile profiles.Profile) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; !ok {
		return profiles.ErrProfileNotFound
	}
	r.profiles[profile.UserID] = profile
	return nil
}

// DeleteProfile removes a profile.
func (r *Repository) DeleteProfile(ctx context.Context, userID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return profiles.ErrProfileNotFound
	}
	delete(r.profiles, userID)
	return nil
}

// ListAccounts returns a user's accounts, oldest first.
func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]profiles.Account, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]profiles.Account, 0)
	for _, a := range r.accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CreateAccount stores an account.
func (r *Repository) CreateAccount(ctx context.Context, account profiles.Account) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

// DeleteAccount removes an account owned by userID.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.UserID != userID {
		return profiles.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}
