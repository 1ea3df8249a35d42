package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"invoicing-cloud/internal/auth"
	identity "invoicing-cloud/internal/identity/domain"
	"invoicing-cloud/internal/observability/metrics"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// Token is the login response.
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// UserService registers users and issues access tokens.
type UserService struct {
	repo   identity.Repository
	hasher PasswordHasher
	secret []byte
	ttl    time.Duration

	now   func() time.Time
	newID func() string
}

// NewUserService constructs a service.
func NewUserService(repo identity.Repository, hasher PasswordHasher, secret []byte, ttl time.Duration) (*UserService, error) {
	if repo == nil {
		return nil, errors.New("user service: nil repository")
	}
	if hasher == nil {
		return nil, errors.New("user service: nil hasher")
	}
	if len(secret) == 0 {
		return nil, errors.New("user service: empty jwt secret")
	}
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	return &UserService{
		repo:   repo,
		hasher: hasher,
		secret: secret,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}, nil
}

// Register creates a user. Duplicate usernames return ErrUserExists.
func (s *UserService) Register(ctx context.Context, reg identity.Registration) (user *identity.User, err error) {
	defer func() {
		metrics.IncAuthAttempt("register", resultOf(err))
	}()

	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByUsername(ctx, reg.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, identity.ErrUserExists
	}
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	created := identity.User{
		ID:           s.newID(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Login verifies credentials and returns a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (token Token, err error) {
	defer func() {
		metrics.IncAuthAttempt("login", resultOf(err))
	}()

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return Token{}, err
	}
	if user == nil {
		return Token{}, identity.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return Token{}, identity.ErrInvalidCredentials
	}
	signed, err := auth.IssueJWT(s.secret, user.ID, user.Username, s.ttl, s.now())
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: TokenTypeBearer}, nil
}

// Me returns the user carried in ctx.
func (s *UserService) Me(ctx context.Context) (*identity.User, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return nil, auth.ErrUnauthorized
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, identity.ErrUserNotFound
	}
	return user, nil
}

func resultOf(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
