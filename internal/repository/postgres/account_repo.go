package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type accountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo creates a new PostgreSQL-backed AccountRepository.
func NewAccountRepo(db *sqlx.DB) port.AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, acct *domain.Account) error {
	acct.ID = uuid.New()
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	query := `INSERT INTO accounts (id, email, password_hash, full_name, tier,
		credits_remaining, invoices_used, total_credits_purchased, is_active,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		acct.ID, acct.Email, acct.PasswordHash, acct.FullName, acct.Tier,
		acct.CreditsRemaining, acct.InvoicesUsed, acct.TotalCreditsPurchased,
		acct.IsActive, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("accountRepo.Create: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acct domain.Account
	err := r.db.GetContext(ctx, &acct, "SELECT * FROM accounts WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("accountRepo.GetByID: %w", err)
	}
	return &acct, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acct domain.Account
	err := r.db.GetContext(ctx, &acct, "SELECT * FROM accounts WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("accountRepo.GetByEmail: %w", err)
	}
	return &acct, nil
}

func (r *accountRepo) Update(ctx context.Context, acct *domain.Account) error {
	acct.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET full_name = $1, tier = $2, credits_remaining = $3, invoices_used = $4,
			total_credits_purchased = $5, is_active = $6, updated_at = $7
		WHERE id = $8`,
		acct.FullName, acct.Tier, acct.CreditsRemaining, acct.InvoicesUsed,
		acct.TotalCreditsPurchased, acct.IsActive, acct.UpdatedAt, acct.ID)
	if err != nil {
		return fmt.Errorf("accountRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeductForInvoice consumes one entitlement in a single conditional
// UPDATE so concurrent generations never land on the same credit. Free
// accounts count invoices against freeLimit, credit accounts spend from
// credits_remaining, subscribers pass through with no mutation.
func (r *accountRepo) DeductForInvoice(ctx context.Context, id uuid.UUID, freeLimit int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET
			credits_remaining = CASE
				WHEN tier = 'credit' THEN credits_remaining - 1
				ELSE credits_remaining
			END,
			invoices_used = CASE
				WHEN tier = 'subscriber' THEN invoices_used
				ELSE invoices_used + 1
			END,
			updated_at = CASE
				WHEN tier = 'subscriber' THEN updated_at
				ELSE NOW()
			END
		WHERE id = $1
		  AND is_active
		  AND (
				tier = 'subscriber'
				OR (tier = 'free' AND invoices_used < $2)
				OR (tier = 'credit' AND credits_remaining > 0)
		  )`,
		id, freeLimit)
	if err != nil {
		return fmt.Errorf("accountRepo.DeductForInvoice: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCreditsExhausted
	}
	return nil
}

func (r *accountRepo) RefundInvoice(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET
			credits_remaining = CASE
				WHEN tier = 'credit' THEN credits_remaining + 1
				ELSE credits_remaining
			END,
			invoices_used = GREATEST(invoices_used - 1, 0),
			updated_at = NOW()
		WHERE id = $1 AND tier <> 'subscriber'`, id)
	if err != nil {
		return fmt.Errorf("accountRepo.RefundInvoice: %w", err)
	}
	return nil
}

// GrantCredits records the grant and applies it in one transaction. The
// credit_grants insert is the idempotency gate: a replayed order hits
// the unique constraint, inserts nothing, and the account is untouched.
func (r *accountRepo) GrantCredits(ctx context.Context, id uuid.UUID, orderID string, credits int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("accountRepo.GrantCredits begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO credit_grants (order_id, account_id, credits, granted_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (order_id) DO NOTHING`,
		orderID, id, credits)
	if err != nil {
		return false, fmt.Errorf("accountRepo.GrantCredits insert: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	// Subscribers keep their tier; everyone else becomes a credit account.
	_, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET
			tier = CASE WHEN tier = 'subscriber' THEN tier ELSE 'credit' END,
			credits_remaining = credits_remaining + $1,
			total_credits_purchased = total_credits_purchased + $1,
			updated_at = NOW()
		WHERE id = $2`,
		credits, id)
	if err != nil {
		return false, fmt.Errorf("accountRepo.GrantCredits apply: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("accountRepo.GrantCredits commit: %w", err)
	}
	return true, nil
}
