package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoicing-cloud/internal/auth"
	profiles "invoicing-cloud/internal/profiles/domain"
	"invoicing-cloud/internal/storage"
)

// MaxPictureBytes bounds profile picture uploads.
const MaxPictureBytes = 5 << 20

// Issuer is the profile and primary payout account printed on invoices.
type Issuer struct {
	Profile *profiles.Profile
	Account *profiles.Account
}

// Service manages the caller's profile and payout accounts.
type Service struct {
	repo  profiles.Repository
	store storage.Store

	now   func() time.Time
	newID func() string
}

// NewService constructs a service. A nil store disables picture uploads.
func NewService(repo profiles.Repository, store storage.Store) (*Service, error) {
	if repo == nil {
		return nil, errors.New("profile service: nil repository")
	}
	return &Service{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}, nil
}

// GetProfile returns the caller's profile.
func (s *Service) GetProfile(ctx context.Context) (*profiles.Profile, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, profiles.ErrProfileNotFound
	}
	return profile, nil
}

// CreateProfile creates the caller's profile.
func (s *Service) CreateProfile(ctx context.Context, in profiles.ProfileInput) (*profiles.Profile, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	profile := profiles.Profile{
		UserID:       userID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		BusinessName: strings.TrimSpace(in.BusinessName),
		Address:      strings.TrimSpace(in.Address),
		UpdatedAt:    s.now(),
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial update.
func (s *Service) UpdateProfile(ctx context.Context, update profiles.ProfileUpdate) (*profiles.Profile, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := update.Apply(profile); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now()
	if err := s.repo.SaveProfile(ctx, *profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteProfile removes the caller's profile and its picture.
func (s *Service) DeleteProfile(ctx context.Context) error {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProfile(ctx, profile.UserID); err != nil {
		return err
	}
	if s.store != nil && profile.ProfilePicture != "" && !strings.Contains(profile.ProfilePicture, "://") {
		_ = s.store.Delete(ctx, profile.ProfilePicture)
	}
	return nil
}

// UploadPicture stores a picture as "<userID>_<filename>" and records its location.
func (s *Service) UploadPicture(ctx context.Context, filename, contentType string, body io.Reader) (*profiles.Profile, error) {
	if s.store == nil {
		return nil, errors.New("profile service: storage not configured")
	}
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return nil, errors.Join(profiles.ErrInvalidProfile, errors.New("picture filename required"))
	}
	key := fmt.Sprintf("%s_%s", profile.UserID, base)
	location, err := s.store.Put(ctx, key, contentType, io.LimitReader(body, MaxPictureBytes))
	if err != nil {
		return nil, err
	}
	profile.ProfilePicture = location
	profile.UpdatedAt = s.now()
	if err := s.repo.SaveProfile(ctx, *profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListAccounts returns the caller's payout accounts, oldest first.
func (s *Service) ListAccounts(ctx context.Context) ([]profiles.Account, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx, userID)
}

// CreateAccount adds a payout account.
func (s *Service) CreateAccount(ctx context.Context, in profiles.AccountInput) (*profiles.Account, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	account := profiles.Account{
		ID:            s.newID(),
		UserID:        userID,
		AccountName:   strings.TrimSpace(in.AccountName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		BankName:      strings.TrimSpace(in.BankName),
		PayPalID:      strings.TrimSpace(in.PayPalID),
		CreatedAt:     s.now(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes one of the caller's accounts.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteAccount(ctx, userID, id)
}

// Issuer returns the caller's profile and first account. Either may be nil.
func (s *Service) Issuer(ctx context.Context) (Issuer, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return Issuer{}, err
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return Issuer{}, err
	}
	accounts, err := s.repo.ListAccounts(ctx, userID)
	if err != nil {
		return Issuer{}, err
	}
	issuer := Issuer{Profile: profile}
	if len(accounts) > 0 {
		issuer.Account = &accounts[0]
	}
	return issuer, nil
}

func callerID(ctx context.Context) (string, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return "", auth.ErrUnauthorized
	}
	return userID, nil
}
