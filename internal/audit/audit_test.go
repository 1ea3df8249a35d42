package audit

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/invoices", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	if got := ClientIP(req); got != "10.0.0.5" {
		t.Fatalf("expected 10.0.0.5, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}
}

func TestDigestJSON(t *testing.T) {
	if DigestJSON(nil) != "" {
		t.Fatalf("expected empty digest")
	}
	if len(DigestJSON([]byte(`{"a":1}`))) != 64 {
		t.Fatalf("expected sha256 hex digest")
	}
}

func TestLogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogLogger(log.New(&buf, "", 0))
	if err := logger.Log(context.Background(), Entry{Actor: "u1", Action: "invoice.create", ResourceType: "invoice", ResourceID: "inv-1"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(buf.String(), "action=invoice.create resource=invoice/inv-1") {
		t.Fatalf("unexpected log line %q", buf.String())
	}
	if !strings.HasPrefix(NewID(), "audit-") {
		t.Fatalf("unexpected id prefix")
	}
}
