package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invogen/internal/domain"
)

// MockOrderRepo is a mock implementation of port.OrderRepository.
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepo) MarkVerified(ctx context.Context, orderID, paymentID string) error {
	args := m.Called(ctx, orderID, paymentID)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkFailed(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
