package port

import (
	"context"

	"github.com/google/uuid"

	"invogen/internal/domain"
)

// AccountRepository defines the contract for account persistence.
type AccountRepository interface {
	Create(ctx context.Context, acct *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, acct *domain.Account) error

	// DeductForInvoice consumes one generation entitlement atomically:
	// free accounts below the limit and credit accounts with credits move
	// their counters in a single conditional write; subscribers pass
	// through unchanged. Returns domain.ErrCreditsExhausted when the
	// account has nothing left, with no partial mutation.
	DeductForInvoice(ctx context.Context, id uuid.UUID, freeLimit int64) error

	// RefundInvoice reverses one deduction after a failed render.
	RefundInvoice(ctx context.Context, id uuid.UUID) error

	// GrantCredits applies a verified top-up idempotently keyed by
	// orderID. The returned bool is false when the order was already
	// granted and nothing changed.
	GrantCredits(ctx context.Context, id uuid.UUID, orderID string, credits int64) (bool, error)
}

// ProfileRepository defines the contract for business profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, accountID uuid.UUID) (*domain.BusinessProfile, error)
	Upsert(ctx context.Context, profile *domain.BusinessProfile) error

	// AllocateInvoiceNumber advances the profile's counter in a single
	// atomic write and returns the allocated value with the prefix.
	// Two concurrent allocations never observe the same number.
	AllocateInvoiceNumber(ctx context.Context, accountID uuid.UUID) (prefix string, number int64, err error)
}

// InvoiceRepository defines the contract for generated-invoice history.
// History is append-only per account and capped: the oldest records are
// evicted first once the cap is reached.
type InvoiceRepository interface {
	Append(ctx context.Context, inv *domain.Invoice, cap int) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error)
}

// OrderRepository defines the contract for payment order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	MarkVerified(ctx context.Context, orderID, paymentID string) error
	MarkFailed(ctx context.Context, orderID string) error
}
