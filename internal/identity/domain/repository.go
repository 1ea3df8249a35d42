package identity

import "context"

// Repository stores users. Lookups return nil, nil when nothing matches.
type Repository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
