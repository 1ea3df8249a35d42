package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"invoicing-cloud/internal/auth"
	identity "invoicing-cloud/internal/identity/domain"
	"invoicing-cloud/internal/identity/infrastructure/memory"
)

var testSecret = []byte("test-secret")

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	svc, err := NewUserService(memory.NewUserRepository(), NewBcryptHasher(bcrypt.MinCost), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new user service: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t)
	user, err := svc.Register(ctx, identity.Registration{Username: "alice", Email: "alice@example.com", Password: "wonderland"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.PasswordHash == "wonderland" {
		t.Fatalf("unexpected user %+v", user)
	}

	token, err := svc.Login(ctx, "alice", "wonderland")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.TokenType != TokenTypeBearer {
		t.Fatalf("unexpected token type %q", token.TokenType)
	}
	claims, err := auth.ParseJWT(token.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != user.ID || claims.Username != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	me, err := svc.Me(auth.WithIdentity(ctx, claims.Subject, claims.Username))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", me.Email)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t)
	reg := identity.Registration{Username: "alice", Email: "alice@example.com", Password: "wonderland"}
	if _, err := svc.Register(ctx, reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, reg); !errors.Is(err, identity.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	reg.Username = "alice2"
	if _, err := svc.Register(ctx, reg); !errors.Is(err, identity.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t)
	if _, err := svc.Register(ctx, identity.Registration{Username: "alice", Email: "alice@example.com", Password: "wonderland"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "nope-nope"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "wonderland"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMeWithoutIdentity(t *testing.T) {
	if _, err := newTestUserService(t).Me(context.Background()); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
