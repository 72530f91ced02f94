package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"invogen/internal/credit"
	"invogen/internal/domain"
	"invogen/internal/port"
)

type accountRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.Account
	byEmail map[string]uuid.UUID
	granted map[string]bool
}

// NewAccountRepo creates an in-memory AccountRepository for tests and
// local development. Tier rules are delegated to the credit meter so the
// fake stays in lockstep with the SQL implementation.
func NewAccountRepo() port.AccountRepository {
	return &accountRepo{
		byID:    make(map[uuid.UUID]*domain.Account),
		byEmail: make(map[string]uuid.UUID),
		granted: make(map[string]bool),
	}
}

func (r *accountRepo) Create(_ context.Context, acct *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[acct.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	acct.ID = uuid.New()
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	stored := *acct
	r.byID[acct.ID] = &stored
	r.byEmail[acct.Email] = acct.ID
	return nil
}

func (r *accountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *acct
	return &copied, nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *accountRepo) Update(_ context.Context, acct *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[acct.ID]
	if !ok {
		return domain.ErrNotFound
	}
	acct.UpdatedAt = time.Now().UTC()
	acct.Email = stored.Email
	copied := *acct
	r.byID[acct.ID] = &copied
	return nil
}

func (r *accountRepo) DeductForInvoice(_ context.Context, id uuid.UUID, freeLimit int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !acct.IsActive {
		return domain.ErrCreditsExhausted
	}
	if err := credit.NewMeter(freeLimit).Deduct(acct); err != nil {
		return err
	}
	if acct.Tier != domain.TierSubscriber {
		acct.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *accountRepo) RefundInvoice(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	credit.NewMeter(0).Refund(acct)
	if acct.Tier != domain.TierSubscriber {
		acct.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *accountRepo) GrantCredits(_ context.Context, id uuid.UUID, orderID string, credits int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.granted[orderID] {
		return false, nil
	}
	r.granted[orderID] = true

	credit.NewMeter(0).ApplyTopUp(acct, credits)
	acct.UpdatedAt = time.Now().UTC()
	return true, nil
}
