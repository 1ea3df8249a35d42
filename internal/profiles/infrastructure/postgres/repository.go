package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	profiles "invoicing-cloud/internal/profiles/domain"
)

var errNilDB = errors.New("profile repo: nil db")

// Repository persists profiles and payout accounts.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetProfile loads a user's profile.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*profiles.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	var p profiles.Profile
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, first_name, last_name, business_name, address, profile_picture, updated_at
FROM profiles
WHERE user_id = $1`, userID).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.BusinessName, &p.Address, &p.ProfilePicture, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// CreateProfile inserts a profile.
func (r *Repository) CreateProfile(ctx context.Context, p profiles.Profile) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (user_id, first_name, last_name, business_name, address, profile_picture, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, p.UserID, p.FirstName, p.LastName, p.BusinessName, p.Address, p.ProfilePicture, p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return profiles.ErrProfileExists
	}
	return err
}

// SaveProfile updates a profile.
func (r *Repository) SaveProfile(ctx context.Context, p profiles.Profile) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE profiles
SET first_name = $2, last_name = $3, business_name = $4, address = $5, profile_picture = $6, updated_at = $7
WHERE user_id = $1`, p.UserID, p.FirstName, p.LastName, p.BusinessName, p.Address, p.ProfilePicture, p.UpdatedAt)
	return expectOne(res, err, profiles.ErrProfileNotFound)
}

// DeleteProfile removes a profile.
func (r *Repository) DeleteProfile(ctx context.Context, userID string) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	return expectOne(res, err, profiles.ErrProfileNotFound)
}

// ListAccounts returns a user's accounts, oldest first.
func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]profiles.Account, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, account_name, account_number, bank_name, paypal_id, created_at
FROM payout_accounts
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]profiles.Account, 0)
	for rows.Next() {
		var a profiles.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountName, &a.AccountNumber, &a.BankName, &a.PayPalID, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.CreatedAt = a.CreatedAt.UTC()
		result = append(result, a)
	}
	return result, rows.Err()
}

// CreateAccount inserts an account.
func (r *Repository) CreateAccount(ctx context.Context, a profiles.Account) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payout_accounts (id, user_id, account_name, account_number, bank_name, paypal_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, a.ID, a.UserID, a.AccountName, a.AccountNumber, a.BankName, a.PayPalID, a.CreatedAt)
	return err
}

// DeleteAccount removes an account owned by userID.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM payout_accounts WHERE user_id = $1 AND id = $2`, userID, id)
	return expectOne(res, err, profiles.ErrAccountNotFound)
}

func expectOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
