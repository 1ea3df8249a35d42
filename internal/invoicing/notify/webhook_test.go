package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan StatusEvent, 1)
	headerCh := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload StatusEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		headerCh <- r.Header.Get("X-Invoicing-Event")
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	event := StatusEvent{
		Event:      EventInvoicePaid,
		InvoiceID:  "inv-1",
		Status:     "paid",
		Total:      "250.00",
		Remaining:  "100.00",
		OccurredAt: time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case got := <-payloadCh:
		if got.InvoiceID != "inv-1" || got.Status != "paid" || got.Remaining != "100.00" {
			t.Fatalf("unexpected payload: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for webhook")
	}
	if header := <-headerCh; header != EventInvoicePaid {
		t.Fatalf("unexpected event header %q", header)
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, 0)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := notifier.Notify(context.Background(), StatusEvent{Event: EventInvoicePaid}); err == nil {
		t.Fatalf("expected error for 502")
	}
}

func TestNewWebhookNotifierEmptyURL(t *testing.T) {
	if _, err := NewWebhookNotifier(" ", 0); err == nil {
		t.Fatalf("expected error")
	}
}
