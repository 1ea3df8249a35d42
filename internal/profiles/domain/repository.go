package profiles

import "context"

// Repository stores one profile and any number of accounts per user.
// GetProfile returns nil, nil when the user has no profile.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, profile Profile) error
	SaveProfile(ctx context.Context, profile Profile) error
	DeleteProfile(ctx context.Context, userID string) error

	ListAccounts(ctx context.Context, userID string) ([]Account, error)
	CreateAccount(ctx context.Context, account Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
}
