package invoicing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemRecord is the wire and storage form of a persisted line item.
type ItemRecord struct {
	Title     string          `json:"title"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Record is the flat snapshot of an invoice exchanged with the billing API
// and the repositories. Derived balance fields are ignored by RestoreInvoice.
type Record struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
	ClientName       string          `json:"clientName"`
	ClientEmail      string          `json:"clientEmail"`
	DueDate          Date            `json:"dueDate"`
	BillingAddress   string          `json:"billingAddress"`
	ExtraInformation string          `json:"extraInformation"`
	Items            []ItemRecord    `json:"items"`
	Total            decimal.Decimal `json:"total"`
	Status           Status          `json:"status"`
	Payments         []Payment       `json:"payments"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Overpaid         bool            `json:"overpaid"`
}

// Record returns the snapshot of inv.
func (inv *Invoice) Record() Record {
	items := make([]ItemRecord, 0, len(inv.items))
	for _, item := range inv.items {
		items = append(items, ItemRecord{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	balance := inv.BalanceReport()
	return Record{
		ID:               inv.id,
		OwnerID:          inv.ownerID,
		CreatedAt:        inv.createdAt,
		ClientName:       inv.clientName,
		ClientEmail:      inv.clientEmail,
		DueDate:          inv.dueDate,
		BillingAddress:   inv.billingAddress,
		ExtraInformation: inv.extraInformation,
		Items:            items,
		Total:            inv.total,
		Status:           inv.status,
		Payments:         inv.Payments(),
		AmountPaid:       balance.Paid,
		RemainingBalance: balance.Remaining,
		Overpaid:         balance.Overpaid,
	}
}

// RestoreInvoice rebuilds an invoice from a stored or received snapshot.
// The recorded total is kept as is.
func RestoreInvoice(rec Record) (*Invoice, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, ErrMissingID
	}
	status, err := ParseStatus(string(rec.Status))
	if err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(rec.Items))
	for _, item := range rec.Items {
		items = append(items, NewLineItem(item.Title, item.Quantity, item.UnitPrice))
	}
	payments := make([]Payment, 0, len(rec.Payments))
	for _, p := range rec.Payments {
		if !p.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		payments = append(payments, Payment{Date: p.Date.UTC(), Amount: RoundCurrency(p.Amount), Label: p.Label})
	}
	return &Invoice{
		id:               rec.ID,
		ownerID:          rec.OwnerID,
		createdAt:        rec.CreatedAt.UTC(),
		dueDate:          rec.DueDate,
		clientName:       rec.ClientName,
		clientEmail:      rec.ClientEmail,
		billingAddress:   rec.BillingAddress,
		extraInformation: rec.ExtraInformation,
		items:            items,
		total:            RoundCurrency(rec.Total),
		status:           status,
		payments:         payments,
	}, nil
}
