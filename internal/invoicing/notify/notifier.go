package notify

import (
	"context"
	"time"
)

// EventInvoicePaid is sent when an invoice moves to paid.
const EventInvoicePaid = "invoice.paid"

// StatusEvent describes an invoice status change.
type StatusEvent struct {
	Event       string    `json:"event"`
	InvoiceID   string    `json:"invoiceId"`
	OwnerID     string    `json:"ownerId"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail"`
	Status      string    `json:"status"`
	Total       string    `json:"total"`
	Remaining   string    `json:"remainingBalance"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Notifier delivers status events.
type Notifier interface {
	Notify(ctx context.Context, event StatusEvent) error
}

// Nop drops every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, StatusEvent) error { return nil }
