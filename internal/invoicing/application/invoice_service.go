package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoicing-cloud/internal/auth"
	invoicing "invoicing-cloud/internal/invoicing/domain"
	"invoicing-cloud/internal/invoicing/notify"
	"invoicing-cloud/internal/observability/metrics"
)

// InvoiceService runs invoice workflows for the user carried in the request context.
type InvoiceService struct {
	repo     invoicing.Repository
	notifier notify.Notifier
	logger   *log.Logger

	now   func() time.Time
	newID func() string
}

// NewInvoiceService constructs a service. A nil notifier drops status events.
func NewInvoiceService(repo invoicing.Repository, notifier notify.Notifier, logger *log.Logger) (*InvoiceService, error) {
	if repo == nil {
		return nil, errors.New("invoice service: nil repository")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &InvoiceService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}, nil
}

// Create validates the payload and persists a new unpaid invoice.
func (s *InvoiceService) Create(ctx context.Context, req invoicing.CreationRequest) (*invoicing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceCreate(result, time.Since(start))
	}()

	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	inv, err := invoicing.NewInvoice(s.newID(), ownerID, s.now(), req)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return inv, nil
}

// List returns the caller's invoices, newest first.
func (s *InvoiceService) List(ctx context.Context) ([]*invoicing.Invoice, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ownerID)
}

// Get returns one of the caller's invoices.
func (s *InvoiceService) Get(ctx context.Context, id string) (*invoicing.Invoice, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicing.ErrNotFound
	}
	return inv, nil
}

// UpdateStatus applies a raw status value. Moving to paid sends an invoice.paid event.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id, rawStatus string) (*invoicing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	label := "invalid"
	defer func() {
		metrics.ObserveInvoiceStatus(label, result, time.Since(start))
	}()

	status, err := invoicing.ParseStatus(rawStatus)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	label = string(status)
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	changed := false
	inv, err := s.repo.Update(ctx, ownerID, id, func(inv *invoicing.Invoice) error {
		before := inv.Status()
		if err := inv.SetStatus(status); err != nil {
			return err
		}
		changed = inv.Status() != before
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if changed && inv.Status() == invoicing.StatusPaid {
		s.notifyPaid(ctx, inv)
	}
	return inv, nil
}

// RecordPayment appends a payment. A zero date uses the current time.
func (s *InvoiceService) RecordPayment(ctx context.Context, id string, amount decimal.Decimal, label string, date time.Time) (*invoicing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoicePayment(result, time.Since(start))
	}()

	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if date.IsZero() {
		date = s.now()
	}
	inv, err := s.repo.Update(ctx, ownerID, id, func(inv *invoicing.Invoice) error {
		_, err := inv.RecordPayment(amount, label, date)
		return err
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return inv, nil
}

// Delete removes one of the caller's invoices.
func (s *InvoiceService) Delete(ctx context.Context, id string) (err error) {
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.IncInvoiceDelete(result)
	}()

	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := inv.Delete(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, inv.OwnerID(), inv.ID())
}

// Summary aggregates the caller's invoices.
func (s *InvoiceService) Summary(ctx context.Context) (invoicing.Summary, error) {
	invoices, err := s.List(ctx)
	if err != nil {
		return invoicing.Summary{}, err
	}
	return invoicing.Summarize(invoices), nil
}

func (s *InvoiceService) notifyPaid(ctx context.Context, inv *invoicing.Invoice) {
	event := notify.StatusEvent{
		Event:       notify.EventInvoicePaid,
		InvoiceID:   inv.ID(),
		OwnerID:     inv.OwnerID(),
		ClientName:  inv.ClientName(),
		ClientEmail: inv.ClientEmail(),
		Status:      string(inv.Status()),
		Total:       invoicing.FormatMoney(inv.Total()),
		Remaining:   invoicing.FormatMoney(inv.RemainingBalance()),
		OccurredAt:  s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil && s.logger != nil {
		s.logger.Printf("invoice %s: status notify failed: %v", inv.ID(), err)
	}
}

func ownerFromContext(ctx context.Context) (string, error) {
	ownerID := auth.UserIDFromContext(ctx)
	if ownerID == "" {
		return "", auth.ErrUnauthorized
	}
	return ownerID, nil
}
