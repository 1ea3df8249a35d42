package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"invoicing-cloud/internal/auth"
	profiles "invoicing-cloud/internal/profiles/domain"
	"invoicing-cloud/internal/profiles/infrastructure/memory"
	"invoicing-cloud/internal/storage"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	svc, err := NewService(memory.NewRepository(), store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	tick := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, store
}

func userCtx(id string) context.Context {
	return auth.WithIdentity(context.Background(), id, id)
}

func TestProfileLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	ctx := userCtx("u1")
	if _, err := svc.GetProfile(ctx); !errors.Is(err, profiles.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.CreateProfile(ctx, profiles.ProfileInput{FirstName: "Ada", LastName: "Lovelace"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateProfile(ctx, profiles.ProfileInput{FirstName: "Ada", LastName: "Lovelace"}); !errors.Is(err, profiles.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
	addr := "12 St James's Square"
	updated, err := svc.UpdateProfile(ctx, profiles.ProfileUpdate{Address: &addr})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Address != addr || updated.FirstName != "Ada" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	withPic, err := svc.UploadPicture(ctx, "../avatar.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if withPic.ProfilePicture != "u1_avatar.png" {
		t.Fatalf("unexpected picture key %q", withPic.ProfilePicture)
	}
	rc, err := store.Open(ctx, withPic.ProfilePicture)
	if err != nil {
		t.Fatalf("open picture: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "img" {
		t.Fatalf("unexpected picture content %q", data)
	}

	if err := svc.DeleteProfile(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, withPic.ProfilePicture); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected picture removed, got %v", err)
	}
	if err := svc.DeleteProfile(ctx); !errors.Is(err, profiles.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestAccountsAndIssuer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := userCtx("u1")
	first, err := svc.CreateAccount(ctx, profiles.AccountInput{AccountName: "Main", AccountNumber: "001", BankName: "First Bank"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.CreateAccount(ctx, profiles.AccountInput{AccountName: "Savings", AccountNumber: "002", BankName: "First Bank"}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.CreateAccount(ctx, profiles.AccountInput{AccountName: "Broken"}); !errors.Is(err, profiles.ErrInvalidAccount) {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}

	issuer, err := svc.Issuer(ctx)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	if issuer.Profile != nil || issuer.Account == nil || issuer.Account.ID != first.ID {
		t.Fatalf("unexpected issuer %+v", issuer)
	}

	if err := svc.DeleteAccount(userCtx("u2"), first.ID); !errors.Is(err, profiles.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := svc.DeleteAccount(ctx, first.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 || accounts[0].AccountName != "Savings" {
		t.Fatalf("unexpected accounts %+v", accounts)
	}
}

func TestRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ListAccounts(context.Background()); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
