package invoicing

import (
	"errors"
	"strings"
)

var (
	// ErrOutOfRange is returned when an item index does not exist on a draft.
	ErrOutOfRange = errors.New("invoicing: item index out of range")
	// ErrInvariantViolation is returned when a mutation would leave a draft without items.
	ErrInvariantViolation = errors.New("invoicing: draft must keep at least one item")
	// ErrUnknownField is returned when an item field name is not recognized.
	ErrUnknownField = errors.New("invoicing: unknown item field")
	// ErrInvalidAmount is returned for non-positive payment amounts.
	ErrInvalidAmount = errors.New("invoicing: invalid amount")
	// ErrValidationFailed is matched by *ValidationError.
	ErrValidationFailed = errors.New("invoicing: validation failed")
	// ErrNotFound is returned for unknown or deleted invoices.
	ErrNotFound = errors.New("invoicing: not found")
	// ErrInvalidStatus is returned when a status value is not unpaid or paid.
	ErrInvalidStatus = errors.New("invoicing: invalid status")
	// ErrInvalidTransition is returned when a paid invoice is moved back to unpaid.
	ErrInvalidTransition = errors.New("invoicing: invalid status transition")
	// ErrRemoteFailure is matched by errors from the billing API client.
	ErrRemoteFailure = errors.New("invoicing: remote failure")
	// ErrMissingID is returned when an invoice is built without an identifier.
	ErrMissingID = errors.New("invoicing: missing invoice id")
	// ErrNilInvoice is returned when saving a nil invoice.
	ErrNilInvoice = errors.New("invoicing: nil invoice")
)

// FieldError describes one failing draft field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that blocks submission.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, ", ")
}

// Is reports ErrValidationFailed as the sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// FieldNames returns the failing field names in order.
func (e *ValidationError) FieldNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}
