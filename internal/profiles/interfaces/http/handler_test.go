package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"invoicing-cloud/internal/auth"
	profileapp "invoicing-cloud/internal/profiles/application"
	profiles "invoicing-cloud/internal/profiles/domain"
	"invoicing-cloud/internal/profiles/infrastructure/memory"
	"invoicing-cloud/internal/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	svc, err := profileapp.NewService(memory.NewRepository(), store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(svc, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), "u1", "alice")))
		})
	})
	r.Route("/profiles", handler.ProfileRoutes)
	r.Route("/accounts", handler.AccountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProfileEndpoints(t *testing.T) {
	h := newTestRouter(t)
	if rec := do(t, h, http.MethodGet, "/profiles/", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/profiles/", "application/json", []byte(`{"firstName":"Ada","lastName":"Lovelace"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPatch, "/profiles/", "application/json", []byte(`{"businessName":"Engines"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p profiles.Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.BusinessName != "Engines" || p.LastName != "Lovelace" {
		t.Fatalf("unexpected profile %+v", p)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("png"))
	_ = mw.Close()
	rec = do(t, h, http.MethodPut, "/profiles/picture", mw.FormDataContentType(), buf.Bytes())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"profilePicture":"u1_me.png"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	if rec := do(t, h, http.MethodDelete, "/profiles/", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountEndpoints(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/accounts/", "application/json", []byte(`{"accountName":"Main","accountNumber":"001","bankName":"First"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var account profiles.Account
	if err := json.NewDecoder(rec.Body).Decode(&account); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec := do(t, h, http.MethodPost, "/accounts/", "application/json", []byte(`{"accountName":"x"}`)); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/accounts/", "", nil)
	var list []profiles.Account
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != account.ID {
		t.Fatalf("unexpected list %+v", list)
	}
	if rec := do(t, h, http.MethodDelete, "/accounts/"+account.ID, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/accounts/"+account.ID, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
