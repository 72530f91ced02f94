package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type invoiceRepo struct {
	mu      sync.Mutex
	history map[uuid.UUID][]domain.Invoice
}

// NewInvoiceRepo creates an in-memory InvoiceRepository.
func NewInvoiceRepo() port.InvoiceRepository {
	return &invoiceRepo{history: make(map[uuid.UUID][]domain.Invoice)}
}

func (r *invoiceRepo) Append(_ context.Context, inv *domain.Invoice, cap int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv.ID = uuid.New()
	inv.CreatedAt = time.Now().UTC()

	records := append(r.history[inv.AccountID], *inv)
	if cap > 0 && len(records) > cap {
		records = records[len(records)-cap:]
	}
	r.history[inv.AccountID] = records
	return nil
}

func (r *invoiceRepo) ListByAccount(_ context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.history[accountID]
	out := make([]domain.Invoice, 0, len(records))
	// newest first
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
