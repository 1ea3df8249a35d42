package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"invoicing-cloud/internal/auth"
	identityapp "invoicing-cloud/internal/identity/application"
	"invoicing-cloud/internal/identity/infrastructure/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	secret := []byte("test-secret")
	svc, err := identityapp.NewUserService(memory.NewUserRepository(), identityapp.NewBcryptHasher(bcrypt.MinCost), secret, time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewUserHandler(svc, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	r := chi.NewRouter()
	r.Route("/users", handler.Routes)
	mw := auth.NewMiddleware(secret, auth.NewDefaultPolicy(nil, nil))
	server := httptest.NewServer(mw.Wrap(r))
	t.Cleanup(server.Close)
	return server
}

func TestRegisterLoginMe(t *testing.T) {
	server := newTestServer(t)
	body := `{"username":"alice","email":"alice@example.com","password":"wonderland"}`
	resp, err := http.Post(server.URL+"/users/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/users/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	form := url.Values{"username": {"alice"}, "password": {"wonderland"}}
	resp, err = http.PostForm(server.URL+"/users/login", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var token struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	resp.Body.Close()
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Fatalf("unexpected token %+v", token)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	var me userResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "alice" || me.Email != "alice@example.com" {
		t.Fatalf("unexpected me %+v", me)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	server := newTestServer(t)
	body := `{"username":"alice","email":"alice@example.com","password":"wonderland"}`
	resp, err := http.Post(server.URL+"/users/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Post(server.URL+"/users/login", "application/json", strings.NewReader(`{"username":"alice","password":"wrong-one"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRegisterInvalid(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Post(server.URL+"/users/register", "application/json", strings.NewReader(`{"username":"a","email":"bad","password":"x"}`))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}
