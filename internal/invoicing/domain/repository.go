package invoicing

import "context"

// Repository persists invoices per owner.
// Get returns nil, nil when the invoice does not exist for the owner.
// Update and Delete return ErrNotFound for unknown invoices.
type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, ownerID, id string) (*Invoice, error)
	List(ctx context.Context, ownerID string) ([]*Invoice, error)
	// Update loads the invoice, applies fn and stores the result as one atomic step.
	// Concurrent updates of the same invoice are serialized. Nothing is stored
	// when fn returns an error.
	Update(ctx context.Context, ownerID, id string, fn func(*Invoice) error) (*Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
}
