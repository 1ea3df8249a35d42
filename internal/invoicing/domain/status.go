package invoicing

import "strings"

// Status is the persisted payment state of an invoice.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// ParseStatus accepts "unpaid" or "paid" in any case.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusUnpaid:
		return StatusUnpaid, nil
	case StatusPaid:
		return StatusPaid, nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Status) String() string { return string(s) }
