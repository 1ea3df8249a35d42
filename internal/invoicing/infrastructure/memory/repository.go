package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	invoicing "invoicing-cloud/internal/invoicing/domain"
)

// InvoiceRepository is an in-memory repository for invoices.
type InvoiceRepository struct {
	mu   sync.RWMutex
	data map[string]*invoicing.Invoice
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{data: make(map[string]*invoicing.Invoice)}
}

// Create stores a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	_ = ctx
	if invoice == nil {
		return invoicing.ErrNilInvoice
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[invoice.ID()]; ok {
		return errors.New("invoice repo: duplicate id")
	}
	r.data[invoice.ID()] = invoice.Clone()
	return nil
}

// Get loads an invoice owned by ownerID.
func (r *InvoiceRepository) Get(ctx context.Context, ownerID, id string) (*invoicing.Invoice, error) {
	_ = ctx
	r.mu.RLock()
	inv := r.data[id]
	r.mu.RUnlock()
	if inv == nil || inv.OwnerID() != ownerID {
		return nil, nil
	}
	return inv.Clone(), nil
}

// List returns the owner's invoices, newest first.
func (r *InvoiceRepository) List(ctx context.Context, ownerID string) ([]*invoicing.Invoice, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]*invoicing.Invoice, 0)
	for _, inv := range r.data {
		if inv.OwnerID() == ownerID {
			result = append(result, inv.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].ID() < result[j].ID()
		}
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	return result, nil
}

// Update applies fn to a copy of the stored invoice under the write lock.
func (r *InvoiceRepository) Update(ctx context.Context, ownerID, id string, fn func(*invoicing.Invoice) error) (*invoicing.Invoice, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.data[id]
	if current == nil || current.OwnerID() != ownerID {
		return nil, invoicing.ErrNotFound
	}
	inv := current.Clone()
	if err := fn(inv); err != nil {
		return nil, err
	}
	r.data[id] = inv.Clone()
	return inv, nil
}

// Delete removes an invoice.
func (r *InvoiceRepository) Delete(ctx context.Context, ownerID, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.data[id]
	if current == nil || current.OwnerID() != ownerID {
		return invoicing.ErrNotFound
	}
	delete(r.data, id)
	return nil
}
