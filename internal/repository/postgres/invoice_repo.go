package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

// Append inserts the record and evicts the oldest rows beyond the cap in
// the same transaction, so history never exceeds cap even under
// concurrent generations.
func (r *invoiceRepo) Append(ctx context.Context, inv *domain.Invoice, cap int) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Append begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, account_id, invoice_number, client_name, draft,
			subtotal, tax_amount, total, currency_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.AccountID, inv.InvoiceNumber, inv.ClientName, inv.Draft,
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.CurrencyCode, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Append insert: %w", err)
	}

	if cap > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM invoices
			WHERE account_id = $1
			  AND id NOT IN (
					SELECT id FROM invoices
					WHERE account_id = $1
					ORDER BY created_at DESC, id DESC
					LIMIT $2
			  )`,
			inv.AccountID, cap)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Append evict: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Append commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices, `
		SELECT * FROM invoices
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListByAccount: %w", err)
	}
	return invoices, nil
}
