package invoicing

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	paid := newTestInvoice(t)
	if err := paid.MarkPaid(); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	partial := newTestInvoice(t)
	if _, err := partial.RecordPayment(dec("100"), "Deposit", testCreatedAt); err != nil {
		t.Fatalf("payment: %v", err)
	}
	over := newTestInvoice(t)
	if _, err := over.RecordPayment(dec("400"), "Wire", testCreatedAt); err != nil {
		t.Fatalf("payment: %v", err)
	}
	deleted := newTestInvoice(t)
	if err := deleted.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}

	s := Summarize([]*Invoice{paid, partial, over, deleted, nil})
	if s.Count != 3 || s.Paid != 1 || s.Unpaid != 2 || s.Overpaid != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if !s.Revenue.Equal(dec("250")) {
		t.Fatalf("expected revenue 250, got %s", s.Revenue)
	}
	if !s.Outstanding.Equal(dec("150")) {
		t.Fatalf("expected outstanding 150, got %s", s.Outstanding)
	}
	if !s.Billed.Equal(dec("750")) || !s.Received.Equal(dec("500")) {
		t.Fatalf("unexpected billed/received: %s %s", s.Billed, s.Received)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || !s.Revenue.IsZero() || !s.Outstanding.IsZero() {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
