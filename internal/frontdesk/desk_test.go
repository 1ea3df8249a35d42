package frontdesk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	invoicing "invoicing-cloud/internal/invoicing/domain"
)

type stubAPI struct {
	records  map[string]invoicing.Record
	created  []invoicing.CreationRequest
	calls    []string
	statusFn func() error
}

func newStubAPI() *stubAPI {
	return &stubAPI{records: map[string]invoicing.Record{}}
}

func (s *stubAPI) CreateInvoice(_ context.Context, req invoicing.CreationRequest) (invoicing.Record, error) {
	s.calls = append(s.calls, "create")
	s.created = append(s.created, req)
	inv, err := invoicing.NewInvoice("inv-1", "", time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), req)
	if err != nil {
		return invoicing.Record{}, err
	}
	s.records[inv.ID()] = inv.Record()
	return inv.Record(), nil
}

func (s *stubAPI) ListInvoices(context.Context) ([]invoicing.Record, error) {
	out := make([]invoicing.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubAPI) GetInvoice(_ context.Context, id string) (invoicing.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return invoicing.Record{}, invoicing.ErrNotFound
	}
	return rec, nil
}

func (s *stubAPI) UpdateStatus(_ context.Context, id string, status invoicing.Status) (invoicing.Record, error) {
	s.calls = append(s.calls, "status")
	if s.statusFn != nil {
		if err := s.statusFn(); err != nil {
			return invoicing.Record{}, err
		}
	}
	rec := s.records[id]
	rec.Status = status
	s.records[id] = rec
	return rec, nil
}

func (s *stubAPI) RecordPayment(_ context.Context, id string, amount decimal.Decimal, label string, date time.Time) (invoicing.Record, error) {
	s.calls = append(s.calls, "payment")
	inv, err := invoicing.RestoreInvoice(s.records[id])
	if err != nil {
		return invoicing.Record{}, err
	}
	if _, err := inv.RecordPayment(amount, label, date); err != nil {
		return invoicing.Record{}, err
	}
	s.records[id] = inv.Record()
	return inv.Record(), nil
}

func (s *stubAPI) DeleteInvoice(_ context.Context, id string) error {
	s.calls = append(s.calls, "delete")
	if _, ok := s.records[id]; !ok {
		return invoicing.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *stubAPI) Download(_ context.Context, id, format string) ([]byte, error) {
	s.calls = append(s.calls, "download:"+format)
	return []byte("%PDF"), nil
}

func completeDraft() *invoicing.Draft {
	d := invoicing.NewDraft()
	d.ClientName = "Acme"
	d.ClientEmail = "ap@acme.example.com"
	d.DueDate = invoicing.NewDate(2026, time.November, 30)
	d.BillingAddress = "1 Main Street"
	_ = d.UpdateItem(0, invoicing.FieldTitle, "Design")
	_ = d.UpdateItem(0, invoicing.FieldQuantity, "2")
	_ = d.UpdateItem(0, invoicing.FieldUnitPrice, "100")
	i := d.AddItem()
	_ = d.UpdateItem(i, invoicing.FieldTitle, "Hosting")
	_ = d.UpdateItem(i, invoicing.FieldUnitPrice, "50")
	return d
}

func TestSubmitInvalidDraftStaysLocal(t *testing.T) {
	api := newStubAPI()
	desk, err := New(api)
	if err != nil {
		t.Fatalf("new desk: %v", err)
	}
	d := invoicing.NewDraft()
	d.ClientName = "Acme"
	if _, err := desk.Submit(context.Background(), d); !errors.Is(err, invoicing.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("api must not be called, got %v", api.calls)
	}
	if d.ClientName != "Acme" || d.Len() != 1 {
		t.Fatalf("draft changed: %+v", d)
	}
}

func TestInvoiceWorkflow(t *testing.T) {
	api := newStubAPI()
	desk, _ := New(api)
	ctx := context.Background()

	inv, err := desk.Submit(ctx, completeDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !inv.Total().Equal(decimal.NewFromInt(250)) || inv.Status() != invoicing.StatusUnpaid {
		t.Fatalf("unexpected invoice %+v", inv.Record())
	}

	if err := desk.RecordPayment(ctx, inv, decimal.Zero, "", time.Time{}); !errors.Is(err, invoicing.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := desk.RecordPayment(ctx, inv, decimal.NewFromInt(100), "Deposit", time.Time{}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if err := desk.RecordPayment(ctx, inv, decimal.NewFromInt(50), "", time.Time{}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if !inv.RemainingBalance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected remaining 100, got %s", inv.RemainingBalance())
	}

	if err := desk.MarkPaid(ctx, inv); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if err := desk.MarkPaid(ctx, inv); err != nil {
		t.Fatalf("mark paid twice: %v", err)
	}
	if inv.Status() != invoicing.StatusPaid || !inv.RemainingBalance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected state after paid: %+v", inv.Record())
	}

	if _, err := desk.Download(ctx, inv, "pdf"); err != nil {
		t.Fatalf("download: %v", err)
	}
	if err := desk.Delete(ctx, inv); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := desk.MarkPaid(ctx, inv); !errors.Is(err, invoicing.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := desk.Delete(ctx, inv); !errors.Is(err, invoicing.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRemoteFailureLeavesInvoiceUnchanged(t *testing.T) {
	api := newStubAPI()
	desk, _ := New(api)
	ctx := context.Background()
	inv, err := desk.Submit(ctx, completeDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	api.statusFn = func() error { return invoicing.ErrRemoteFailure }
	if err := desk.MarkPaid(ctx, inv); !errors.Is(err, invoicing.ErrRemoteFailure) {
		t.Fatalf("expected ErrRemoteFailure, got %v", err)
	}
	if inv.Status() != invoicing.StatusUnpaid {
		t.Fatalf("status changed on failure: %s", inv.Status())
	}
}
