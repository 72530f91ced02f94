package memory

import (
	"context"
	"sync"
	"time"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type orderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.PaymentOrder
}

// NewOrderRepo creates an in-memory OrderRepository.
func NewOrderRepo() port.OrderRepository {
	return &orderRepo{orders: make(map[string]*domain.PaymentOrder)}
}

func (r *orderRepo) Create(_ context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.CreatedAt = time.Now().UTC()
	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}
	copied := *order
	r.orders[order.OrderID] = &copied
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *orderRepo) MarkVerified(_ context.Context, orderID, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	now := time.Now().UTC()
	order.Status = domain.OrderStatusVerified
	order.PaymentID = paymentID
	order.VerifiedAt = &now
	return nil
}

func (r *orderRepo) MarkFailed(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusVerified {
		order.Status = domain.OrderStatusFailed
	}
	return nil
}
