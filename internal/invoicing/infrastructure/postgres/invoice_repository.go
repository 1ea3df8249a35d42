package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	invoicing "invoicing-cloud/internal/invoicing/domain"
)

// InvoiceRepository persists invoices, their items and their payment ledger.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

var (
	errNilDB        = errors.New("invoice repo: nil db")
	errLedgerShrank = errors.New("invoice repo: payment ledger is append-only")
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Create inserts the invoice header and items in one transaction.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	if invoice == nil {
		return invoicing.ErrNilInvoice
	}
	rec := invoice.Record()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO invoices (
	id, owner_id, client_name, client_email, due_date, billing_address,
	extra_information, total, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)`,
		rec.ID, rec.OwnerID, rec.ClientName, rec.ClientEmail, rec.DueDate.Time(), rec.BillingAddress,
		rec.ExtraInformation, rec.Total, string(rec.Status), rec.CreatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for i, item := range rec.Items {
		_, err := tx.ExecContext(ctx, `
INSERT INTO invoice_items (invoice_id, position, title, quantity, unit_price)
VALUES ($1,$2,$3,$4,$5)`, rec.ID, i, item.Title, item.Quantity, item.UnitPrice)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := insertPayments(ctx, tx, rec.ID, 0, rec.Payments); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Get loads an invoice owned by ownerID.
func (r *InvoiceRepository) Get(ctx context.Context, ownerID, id string) (*invoicing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, client_name, client_email, due_date, billing_address,
	extra_information, total, status, created_at
FROM invoices
WHERE owner_id = $1 AND id = $2
LIMIT 1`, ownerID, id)
	rec, err := scanInvoice(row)
	if err != nil || rec == nil {
		return nil, err
	}
	if err := loadChildren(ctx, r.db, rec); err != nil {
		return nil, err
	}
	return invoicing.RestoreInvoice(*rec)
}

// List returns the owner's invoices, newest first.
func (r *InvoiceRepository) List(ctx context.Context, ownerID string) ([]*invoicing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, owner_id, client_name, client_email, due_date, billing_address,
	extra_information, total, status, created_at
FROM invoices
WHERE owner_id = $1
ORDER BY created_at DESC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	var records []*invoicing.Record
	for rows.Next() {
		rec, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	result := make([]*invoicing.Invoice, 0, len(records))
	for _, rec := range records {
		if err := loadChildren(ctx, r.db, rec); err != nil {
			return nil, err
		}
		inv, err := invoicing.RestoreInvoice(*rec)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, nil
}

// Update locks the invoice row, applies fn and persists the status and any
// payments appended by fn in the same transaction.
func (r *InvoiceRepository) Update(ctx context.Context, ownerID, id string, fn func(*invoicing.Invoice) error) (*invoicing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx, `
SELECT id, owner_id, client_name, client_email, due_date, billing_address,
	extra_information, total, status, created_at
FROM invoices
WHERE owner_id = $1 AND id = $2
FOR UPDATE`, ownerID, id)
	rec, err := scanInvoice(row)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if rec == nil {
		_ = tx.Rollback()
		return nil, invoicing.ErrNotFound
	}
	if err := loadChildren(ctx, tx, rec); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	inv, err := invoicing.RestoreInvoice(*rec)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	stored := len(rec.Payments)
	if err := fn(inv); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	next := inv.Record()
	if len(next.Payments) < stored {
		_ = tx.Rollback()
		return nil, errLedgerShrank
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE invoices
SET status = $1, updated_at = $2
WHERE owner_id = $3 AND id = $4`, string(next.Status), time.Now().UTC(), ownerID, id); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := insertPayments(ctx, tx, id, stored, next.Payments[stored:]); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes an invoice; items and payments cascade.
func (r *InvoiceRepository) Delete(ctx context.Context, ownerID, id string) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return invoicing.ErrNotFound
	}
	return nil
}

// insertPayments appends payments starting at ledger position offset.
func insertPayments(ctx context.Context, tx *sql.Tx, invoiceID string, offset int, payments []invoicing.Payment) error {
	for i, p := range payments {
		_, err := tx.ExecContext(ctx, `
INSERT INTO invoice_payments (invoice_id, position, paid_at, amount, label)
VALUES ($1,$2,$3,$4,$5)`, invoiceID, offset+i, p.Date, p.Amount, p.Label)
		if err != nil {
			return err
		}
	}
	return nil
}

func loadChildren(ctx context.Context, q queryer, rec *invoicing.Record) error {
	rows, err := q.QueryContext(ctx, `
SELECT title, quantity, unit_price
FROM invoice_items
WHERE invoice_id = $1
ORDER BY position ASC`, rec.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var item invoicing.ItemRecord
		if err := rows.Scan(&item.Title, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return err
		}
		rec.Items = append(rec.Items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx, `
SELECT paid_at, amount, label
FROM invoice_payments
WHERE invoice_id = $1
ORDER BY position ASC`, rec.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p invoicing.Payment
		if err := rows.Scan(&p.Date, &p.Amount, &p.Label); err != nil {
			return err
		}
		p.Date = p.Date.UTC()
		rec.Payments = append(rec.Payments, p)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(scanner rowScanner) (*invoicing.Record, error) {
	var (
		rec     invoicing.Record
		dueDate sql.NullTime
		status  string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ClientName,
		&rec.ClientEmail,
		&dueDate,
		&rec.BillingAddress,
		&rec.ExtraInformation,
		&rec.Total,
		&status,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if dueDate.Valid {
		rec.DueDate = invoicing.DateOf(dueDate.Time)
	}
	rec.Status = invoicing.Status(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
