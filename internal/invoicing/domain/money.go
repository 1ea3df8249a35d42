package invoicing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places kept for money values.
const CurrencyPrecision int32 = 2

// MaxAmount is the largest amount a price, total or payment may hold.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// RoundCurrency rounds half-even to currency precision.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CurrencyPrecision)
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return RoundCurrency(d).StringFixedBank(CurrencyPrecision)
}

// ParseMoney parses user or wire input into a currency-precision decimal.
func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	return RoundCurrency(d), nil
}
