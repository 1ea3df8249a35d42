package invoicing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentLabel is used when a payment is recorded without a label.
const DefaultPaymentLabel = "Partial Payment"

// Payment is one entry of the invoice ledger.
type Payment struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}

// Balance summarizes the ledger against the invoice total.
type Balance struct {
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
	Remaining   decimal.Decimal
	Overpaid    bool
}

// Invoice is a persisted invoice and its payment ledger.
// Status moves from unpaid to paid only through MarkPaid. Payments are append-only.
// After Delete every mutation returns ErrNotFound.
type Invoice struct {
	id        string
	ownerID   string
	createdAt time.Time
	dueDate   Date

	clientName       string
	clientEmail      string
	billingAddress   string
	extraInformation string

	items    []LineItem
	total    decimal.Decimal
	status   Status
	payments []Payment

	deleted bool
}

// NewInvoice creates an unpaid invoice from a validated creation request.
// The total is computed once here and is authoritative afterwards.
func NewInvoice(id, ownerID string, createdAt time.Time, req CreationRequest) (*Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, NewLineItem(item.Title, item.Quantity, item.UnitPrice))
	}
	return &Invoice{
		id:               id,
		ownerID:          ownerID,
		createdAt:        createdAt.UTC(),
		dueDate:          req.DueDate,
		clientName:       req.ClientName,
		clientEmail:      req.ClientEmail,
		billingAddress:   req.BillingAddress,
		extraInformation: req.ExtraInformation,
		items:            items,
		total:            sumSubtotals(items),
		status:           StatusUnpaid,
	}, nil
}

// ID returns the identifier assigned by the billing API.
func (inv *Invoice) ID() string { return inv.id }

// OwnerID returns the owning user id.
func (inv *Invoice) OwnerID() string { return inv.ownerID }

// CreatedAt returns the creation timestamp.
func (inv *Invoice) CreatedAt() time.Time { return inv.createdAt }

// DueDate returns the due date.
func (inv *Invoice) DueDate() Date { return inv.dueDate }

// ClientName returns the billed client name.
func (inv *Invoice) ClientName() string { return inv.clientName }

// ClientEmail returns the billed client email.
func (inv *Invoice) ClientEmail() string { return inv.clientEmail }

// BillingAddress returns the billing address.
func (inv *Invoice) BillingAddress() string { return inv.billingAddress }

// ExtraInformation returns the optional free-text note.
func (inv *Invoice) ExtraInformation() string { return inv.extraInformation }

// Items returns a copy of the line items.
func (inv *Invoice) Items() []LineItem {
	out := make([]LineItem, len(inv.items))
	copy(out, inv.items)
	return out
}

// Total returns the total fixed at creation.
func (inv *Invoice) Total() decimal.Decimal { return inv.total }

// Status returns the current status.
func (inv *Invoice) Status() Status { return inv.status }

// Payments returns a copy of the ledger.
func (inv *Invoice) Payments() []Payment {
	out := make([]Payment, len(inv.payments))
	copy(out, inv.payments)
	return out
}

// IsDeleted reports whether Delete was called.
func (inv *Invoice) IsDeleted() bool { return inv.deleted }

// MarkPaid moves the invoice to paid. It is a no-op when already paid.
func (inv *Invoice) MarkPaid() error {
	if inv.deleted {
		return ErrNotFound
	}
	inv.status = StatusPaid
	return nil
}

// SetStatus applies a requested status. Paid invoices cannot return to unpaid.
func (inv *Invoice) SetStatus(status Status) error {
	if inv.deleted {
		return ErrNotFound
	}
	switch status {
	case StatusPaid:
		return inv.MarkPaid()
	case StatusUnpaid:
		if inv.status == StatusPaid {
			return ErrInvalidTransition
		}
		return nil
	default:
		return ErrInvalidStatus
	}
}

// RecordPayment appends a payment. It never changes the status.
func (inv *Invoice) RecordPayment(amount decimal.Decimal, label string, date time.Time) (Payment, error) {
	if inv.deleted {
		return Payment{}, ErrNotFound
	}
	amount = RoundCurrency(amount)
	if !amount.IsPositive() || amount.GreaterThan(MaxAmount) {
		return Payment{}, ErrInvalidAmount
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultPaymentLabel
	}
	payment := Payment{Date: date.UTC(), Amount: amount, Label: label}
	inv.payments = append(inv.payments, payment)
	return payment, nil
}

// PaidAmount sums the ledger.
func (inv *Invoice) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range inv.payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// OutstandingBalance is total minus payments; negative when overpaid.
func (inv *Invoice) OutstandingBalance() decimal.Decimal {
	return inv.total.Sub(inv.PaidAmount())
}

// RemainingBalance is the outstanding balance floored at zero for display.
func (inv *Invoice) RemainingBalance() decimal.Decimal {
	outstanding := inv.OutstandingBalance()
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// IsOverpaid reports payments exceeding the total.
func (inv *Invoice) IsOverpaid() bool {
	return inv.OutstandingBalance().IsNegative()
}

// BalanceReport returns total, paid, and both balance views.
func (inv *Invoice) BalanceReport() Balance {
	outstanding := inv.OutstandingBalance()
	remaining := outstanding
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Balance{
		Total:       inv.total,
		Paid:        inv.PaidAmount(),
		Outstanding: outstanding,
		Remaining:   remaining,
		Overpaid:    outstanding.IsNegative(),
	}
}

// Delete ends the invoice lifecycle.
func (inv *Invoice) Delete() error {
	if inv.deleted {
		return ErrNotFound
	}
	inv.deleted = true
	return nil
}

// Clone returns a detached copy.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.items = inv.Items()
	c.payments = inv.Payments()
	return &c
}
