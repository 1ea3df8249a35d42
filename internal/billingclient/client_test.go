package billingclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoicing-cloud/internal/auth"
	invoicing "invoicing-cloud/internal/invoicing/domain"
)

const recordJSON = `{"id":"inv-1","createdAt":"2026-10-01T12:00:00Z","clientName":"Acme","clientEmail":"ap@acme.example.com","dueDate":"2026-11-30","billingAddress":"1 Main Street","extraInformation":"","items":[{"title":"Design","quantity":2,"unitPrice":"100","subtotal":"200"}],"total":"200","status":"unpaid","payments":[]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestLoginUsesFormAndReturnsSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "s3cret-pass" {
			t.Errorf("unexpected form %v %v", r.PostForm, err)
		}
		_, _ = io.WriteString(w, `{"accessToken":"tok","tokenType":"bearer"}`)
	})
	session, err := c.Login(context.Background(), "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "tok" || session.TokenType != "bearer" || session.Username != "alice" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCreateInvoiceSendsBearerAndWireNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		for _, key := range []string{"clientName", "clientEmail", "dueDate", "billingAddress", "extraInformation", "items"} {
			if _, ok := body[key]; !ok {
				t.Errorf("missing %s in %v", key, body)
			}
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, recordJSON)
	}).WithSession(Session{Token: "tok", TokenType: "bearer"})

	d := invoicing.NewDraft()
	d.ClientName = "Acme"
	rec, err := c.CreateInvoice(context.Background(), d.ToCreationRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "inv-1" || !rec.Total.Equal(decimal.NewFromInt(200)) || rec.DueDate.String() != "2026-11-30" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		want       error
		remoteFail bool
	}{
		{"not found", http.StatusNotFound, "Invoice not found", invoicing.ErrNotFound, false},
		{"unauthorized", http.StatusUnauthorized, "unauthorized", auth.ErrUnauthorized, false},
		{"validation", http.StatusUnprocessableEntity, `{"error":"validation failed","fields":[{"field":"clientName","reason":"is required"}]}`, invoicing.ErrValidationFailed, false},
		{"amount", http.StatusUnprocessableEntity, "invoicing: invalid amount", invoicing.ErrInvalidAmount, false},
		{"transition", http.StatusConflict, "invoicing: invalid status transition", invoicing.ErrInvalidTransition, false},
		{"server", http.StatusInternalServerError, "internal error", invoicing.ErrRemoteFailure, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, tc.status)
			})
			_, err := c.GetInvoice(context.Background(), "inv-1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if errors.Is(err, invoicing.ErrRemoteFailure) != tc.remoteFail {
				t.Fatalf("remote failure classification wrong for %v", err)
			}
			var rerr *RemoteError
			if !errors.As(err, &rerr) || rerr.StatusCode != tc.status || rerr.Path != "/invoices/inv-1" {
				t.Fatalf("unexpected remote error %+v", rerr)
			}
		})
	}
}

func TestValidationFieldsAreDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":"validation failed","fields":[{"field":"dueDate","reason":"is required"}]}`)
	})
	_, err := c.CreateInvoice(context.Background(), invoicing.CreationRequest{})
	var verr *invoicing.ValidationError
	if !errors.As(err, &verr) || len(verr.FieldNames()) != 1 || verr.FieldNames()[0] != "dueDate" {
		t.Fatalf("expected validation fields, got %v", err)
	}
}

func TestTransportFailureIsRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.ListInvoices(context.Background()); !errors.Is(err, invoicing.ErrRemoteFailure) {
		t.Fatalf("expected ErrRemoteFailure, got %v", err)
	}
}

func TestStatusPaymentAndDownloadRequests(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		switch {
		case strings.HasSuffix(r.URL.Path, "/download"):
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "%PDF-1.3")
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/payments"):
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["amount"] != "25.5" || body["label"] != "Deposit" || body["date"] != "2026-10-02T00:00:00Z" {
				t.Errorf("unexpected payment body %v", body)
			}
			_, _ = io.WriteString(w, recordJSON)
		default:
			_, _ = io.WriteString(w, recordJSON)
		}
	})
	ctx := context.Background()
	if _, err := c.UpdateStatus(ctx, "inv-1", invoicing.StatusPaid); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := c.RecordPayment(ctx, "inv-1", decimal.RequireFromString("25.50"), "Deposit", time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("payment: %v", err)
	}
	data, err := c.Download(ctx, "inv-1", "pdf")
	if err != nil || !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("download: %q %v", data, err)
	}
	if err := c.DeleteInvoice(ctx, "inv-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{
		"PATCH /invoices/inv-1/status?status=paid",
		"POST /invoices/inv-1/payments",
		"GET /invoices/inv-1/download?format=pdf",
		"DELETE /invoices/inv-1",
	}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected requests %v", seen)
	}
}
