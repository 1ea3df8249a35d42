package invoicing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultQuantity replaces any invalid quantity input.
	DefaultQuantity int64 = 1
)

// DefaultUnitPrice replaces any invalid price input.
var DefaultUnitPrice = decimal.Zero

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// ItemField names an editable line item field.
type ItemField string

const (
	FieldTitle     ItemField = "title"
	FieldQuantity  ItemField = "quantity"
	FieldUnitPrice ItemField = "unitPrice"
)

// ParseItemField accepts the wire name or the snake_case form.
func ParseItemField(raw string) (ItemField, error) {
	switch strings.TrimSpace(raw) {
	case string(FieldTitle):
		return FieldTitle, nil
	case string(FieldQuantity), "qty":
		return FieldQuantity, nil
	case string(FieldUnitPrice), "unit_price", "price":
		return FieldUnitPrice, nil
	default:
		return "", ErrUnknownField
	}
}

// LineItem is one billable row.
type LineItem struct {
	Title     string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// NewLineItem builds an item with quantity and price clamped to safe values.
func NewLineItem(title string, quantity int64, unitPrice decimal.Decimal) LineItem {
	if quantity < 1 {
		quantity = DefaultQuantity
	}
	if unitPrice.IsNegative() {
		unitPrice = DefaultUnitPrice
	}
	return LineItem{Title: title, Quantity: quantity, UnitPrice: RoundCurrency(unitPrice)}
}

func defaultLineItem() LineItem {
	return LineItem{Quantity: DefaultQuantity, UnitPrice: DefaultUnitPrice}
}

// Subtotal is quantity × unit price rounded half-even to currency precision.
func (i LineItem) Subtotal() decimal.Decimal {
	return RoundCurrency(decimal.NewFromInt(i.Quantity).Mul(i.UnitPrice))
}

// CoerceQuantity turns raw input into a quantity >= 1.
// Non-numeric, fractional, zero, negative or overflowing input yields DefaultQuantity.
func CoerceQuantity(raw string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return DefaultQuantity
	}
	if !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(maxQuantity) {
		return DefaultQuantity
	}
	return d.IntPart()
}

// CoerceUnitPrice turns raw input into a non-negative currency amount.
// Non-numeric or negative input yields DefaultUnitPrice.
func CoerceUnitPrice(raw string) decimal.Decimal {
	d, err := ParseMoney(raw)
	if err != nil || d.IsNegative() {
		return DefaultUnitPrice
	}
	return d
}
