package invoicing

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// Draft is an unpersisted, editable invoice. It always holds at least one item.
// A Draft is owned by a single caller and is not safe for concurrent use.
type Draft struct {
	ClientName       string
	ClientEmail      string
	DueDate          Date
	BillingAddress   string
	ExtraInformation string

	items []LineItem
}

// NewDraft returns an empty draft holding one default item.
func NewDraft() *Draft {
	return &Draft{items: []LineItem{defaultLineItem()}}
}

// Items returns a copy of the items in display order.
func (d *Draft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of items.
func (d *Draft) Len() int { return len(d.items) }

// Item returns the item at index.
func (d *Draft) Item(index int) (LineItem, error) {
	if index < 0 || index >= len(d.items) {
		return LineItem{}, ErrOutOfRange
	}
	return d.items[index], nil
}

// AddItem appends a default item and returns its index.
func (d *Draft) AddItem() int {
	d.items = append(d.items, defaultLineItem())
	return len(d.items) - 1
}

// RemoveItem deletes the item at index. The last remaining item cannot be removed.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.items) {
		return ErrOutOfRange
	}
	if len(d.items) <= 1 {
		return ErrInvariantViolation
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
	return nil
}

// UpdateItem sets one field of the item at index from raw input.
// Invalid numbers fall back to DefaultQuantity and DefaultUnitPrice.
func (d *Draft) UpdateItem(index int, field ItemField, value string) error {
	if index < 0 || index >= len(d.items) {
		return ErrOutOfRange
	}
	item := d.items[index]
	switch field {
	case FieldTitle:
		item.Title = value
	case FieldQuantity:
		item.Quantity = CoerceQuantity(value)
	case FieldUnitPrice:
		item.UnitPrice = CoerceUnitPrice(value)
	default:
		return ErrUnknownField
	}
	d.items[index] = item
	return nil
}

// SetItem replaces the item at index with a clamped copy of item.
func (d *Draft) SetItem(index int, item LineItem) error {
	if index < 0 || index >= len(d.items) {
		return ErrOutOfRange
	}
	d.items[index] = NewLineItem(item.Title, item.Quantity, item.UnitPrice)
	return nil
}

// Subtotal returns the subtotal of the item at index.
func (d *Draft) Subtotal(index int) (decimal.Decimal, error) {
	item, err := d.Item(index)
	if err != nil {
		return decimal.Zero, err
	}
	return item.Subtotal(), nil
}

// Total sums item subtotals.
func (d *Draft) Total() decimal.Decimal {
	return sumSubtotals(d.items)
}

// Validate returns nil when the draft can be submitted, otherwise a *ValidationError.
func (d *Draft) Validate() error {
	verr := &ValidationError{}
	validateHeader(verr, d.ClientName, d.ClientEmail, d.DueDate, d.BillingAddress)
	validateItems(verr, d.items)
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validateHeader(verr *ValidationError, clientName, clientEmail string, dueDate Date, billingAddress string) {
	if strings.TrimSpace(clientName) == "" {
		verr.add("clientName", "is required")
	}
	if !ValidEmail(clientEmail) {
		verr.add("clientEmail", "must be a valid email address")
	}
	if dueDate.IsZero() {
		verr.add("dueDate", "is required")
	}
	if strings.TrimSpace(billingAddress) == "" {
		verr.add("billingAddress", "is required")
	}
}

func validateItems(verr *ValidationError, items []LineItem) {
	if len(items) == 0 {
		verr.add("items", "must contain at least one item")
		return
	}
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			verr.add(fmt.Sprintf("items[%d].title", i), "is required")
		}
		if item.UnitPrice.GreaterThan(MaxAmount) {
			verr.add(fmt.Sprintf("items[%d].unitPrice", i), "exceeds the maximum amount")
		}
	}
	if sumSubtotals(items).GreaterThan(MaxAmount) {
		verr.add("total", "exceeds the maximum amount")
	}
}

// ToCreationRequest snapshots the draft into the wire payload.
func (d *Draft) ToCreationRequest() CreationRequest {
	items := make([]CreationItem, 0, len(d.items))
	for _, item := range d.items {
		items = append(items, CreationItem{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return CreationRequest{
		ClientName:       d.ClientName,
		ClientEmail:      d.ClientEmail,
		DueDate:          d.DueDate,
		BillingAddress:   d.BillingAddress,
		ExtraInformation: d.ExtraInformation,
		Items:            items,
	}
}

// DraftFromRequest rebuilds a draft from a creation payload.
// Item values pass through the same clamping as UpdateItem; an empty item list
// yields a draft with one default item so Validate reports the blank title.
func DraftFromRequest(req CreationRequest) *Draft {
	d := &Draft{
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		DueDate:          req.DueDate,
		BillingAddress:   req.BillingAddress,
		ExtraInformation: req.ExtraInformation,
	}
	for _, item := range req.Items {
		d.items = append(d.items, NewLineItem(item.Title, item.Quantity, item.UnitPrice))
	}
	if len(d.items) == 0 {
		d.items = []LineItem{defaultLineItem()}
	}
	return d
}

// ValidEmail reports whether raw is a bare email address.
func ValidEmail(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return false
	}
	return addr.Address == trimmed && strings.Contains(trimmed[strings.LastIndex(trimmed, "@")+1:], ".")
}

func sumSubtotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
