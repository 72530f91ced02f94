package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"invogen/internal/domain"
	"invogen/internal/port"
	"invogen/internal/sequence"
)

type profileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.BusinessProfile
}

// NewProfileRepo creates an in-memory ProfileRepository.
func NewProfileRepo() port.ProfileRepository {
	return &profileRepo{profiles: make(map[uuid.UUID]*domain.BusinessProfile)}
}

func (r *profileRepo) Get(_ context.Context, accountID uuid.UUID) (*domain.BusinessProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *profileRepo) Upsert(_ context.Context, profile *domain.BusinessProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	profile.UpdatedAt = now
	copied := *profile
	if existing, ok := r.profiles[profile.AccountID]; ok {
		// Edits never reset the allocation counter.
		copied.LastInvoiceNumber = existing.LastInvoiceNumber
		copied.CreatedAt = existing.CreatedAt
	} else {
		copied.LastInvoiceNumber = nil
		copied.CreatedAt = now
	}
	r.profiles[profile.AccountID] = &copied
	return nil
}

func (r *profileRepo) AllocateInvoiceNumber(_ context.Context, accountID uuid.UUID) (string, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[accountID]
	if !ok {
		return "", 0, domain.ErrProfileNotFound
	}
	next := sequence.Next(profile)
	profile.LastInvoiceNumber = &next
	profile.UpdatedAt = time.Now().UTC()
	return profile.InvoicePrefix, next, nil
}
