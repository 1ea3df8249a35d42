// Package frontdesk drives drafts and invoices against the billing API on behalf of a user.
package frontdesk

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	invoicing "invoicing-cloud/internal/invoicing/domain"
)

// API is the part of the billing client the desk needs.
type API interface {
	CreateInvoice(ctx context.Context, req invoicing.CreationRequest) (invoicing.Record, error)
	ListInvoices(ctx context.Context) ([]invoicing.Record, error)
	GetInvoice(ctx context.Context, id string) (invoicing.Record, error)
	UpdateStatus(ctx context.Context, id string, status invoicing.Status) (invoicing.Record, error)
	RecordPayment(ctx context.Context, id string, amount decimal.Decimal, label string, date time.Time) (invoicing.Record, error)
	DeleteInvoice(ctx context.Context, id string) error
	Download(ctx context.Context, id, format string) ([]byte, error)
}

// Desk applies invoice operations locally first and then remotely, so a
// contract violation never reaches the API.
type Desk struct {
	api API
}

// New constructs a desk.
func New(api API) (*Desk, error) {
	if api == nil {
		return nil, errors.New("frontdesk: nil api")
	}
	return &Desk{api: api}, nil
}

// Submit validates the draft and creates the invoice. On a validation error
// the draft is untouched and stays editable.
func (d *Desk) Submit(ctx context.Context, draft *invoicing.Draft) (*invoicing.Invoice, error) {
	if draft == nil {
		return nil, errors.New("frontdesk: nil draft")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	rec, err := d.api.CreateInvoice(ctx, draft.ToCreationRequest())
	if err != nil {
		return nil, err
	}
	return invoicing.RestoreInvoice(rec)
}

// Open loads an invoice by id.
func (d *Desk) Open(ctx context.Context, id string) (*invoicing.Invoice, error) {
	rec, err := d.api.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoicing.RestoreInvoice(rec)
}

// List loads every invoice of the session user.
func (d *Desk) List(ctx context.Context) ([]*invoicing.Invoice, error) {
	recs, err := d.api.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*invoicing.Invoice, 0, len(recs))
	for _, rec := range recs {
		inv, err := invoicing.RestoreInvoice(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// MarkPaid marks inv paid remotely and adopts the server state. Already paid
// invoices are still sent so retries converge.
func (d *Desk) MarkPaid(ctx context.Context, inv *invoicing.Invoice) error {
	if inv == nil {
		return invoicing.ErrNilInvoice
	}
	if err := inv.Clone().MarkPaid(); err != nil {
		return err
	}
	rec, err := d.api.UpdateStatus(ctx, inv.ID(), invoicing.StatusPaid)
	if err != nil {
		return err
	}
	return adopt(inv, rec)
}

// RecordPayment appends a payment remotely and adopts the server state.
func (d *Desk) RecordPayment(ctx context.Context, inv *invoicing.Invoice, amount decimal.Decimal, label string, date time.Time) error {
	if inv == nil {
		return invoicing.ErrNilInvoice
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	if _, err := inv.Clone().RecordPayment(amount, label, date); err != nil {
		return err
	}
	rec, err := d.api.RecordPayment(ctx, inv.ID(), amount, label, date)
	if err != nil {
		return err
	}
	return adopt(inv, rec)
}

// Delete removes inv remotely and ends its local lifecycle.
func (d *Desk) Delete(ctx context.Context, inv *invoicing.Invoice) error {
	if inv == nil {
		return invoicing.ErrNilInvoice
	}
	if inv.IsDeleted() {
		return invoicing.ErrNotFound
	}
	if err := d.api.DeleteInvoice(ctx, inv.ID()); err != nil {
		return err
	}
	return inv.Delete()
}

// Download fetches the rendered invoice document.
func (d *Desk) Download(ctx context.Context, inv *invoicing.Invoice, format string) ([]byte, error) {
	if inv == nil {
		return nil, invoicing.ErrNilInvoice
	}
	if inv.IsDeleted() {
		return nil, invoicing.ErrNotFound
	}
	return d.api.Download(ctx, inv.ID(), format)
}

func adopt(inv *invoicing.Invoice, rec invoicing.Record) error {
	restored, err := invoicing.RestoreInvoice(rec)
	if err != nil {
		return err
	}
	*inv = *restored
	return nil
}
