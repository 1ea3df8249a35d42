package invoicing

import "github.com/shopspring/decimal"

// Summary aggregates a user's invoices for the dashboard.
type Summary struct {
	Count       int             `json:"count"`
	Paid        int             `json:"paid"`
	Unpaid      int             `json:"unpaid"`
	Overpaid    int             `json:"overpaid"`
	Billed      decimal.Decimal `json:"billed"`
	Revenue     decimal.Decimal `json:"revenue"`
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Summarize folds invoices into a Summary. Deleted invoices are skipped.
// Revenue counts paid invoice totals; Outstanding sums the clamped balance of unpaid ones.
func Summarize(invoices []*Invoice) Summary {
	s := Summary{
		Billed:      decimal.Zero,
		Revenue:     decimal.Zero,
		Received:    decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, inv := range invoices {
		if inv == nil || inv.IsDeleted() {
			continue
		}
		s.Count++
		s.Billed = s.Billed.Add(inv.Total())
		s.Received = s.Received.Add(inv.PaidAmount())
		if inv.IsOverpaid() {
			s.Overpaid++
		}
		switch inv.Status() {
		case StatusPaid:
			s.Paid++
			s.Revenue = s.Revenue.Add(inv.Total())
		default:
			s.Unpaid++
			s.Outstanding = s.Outstanding.Add(inv.RemainingBalance())
		}
	}
	return s
}
