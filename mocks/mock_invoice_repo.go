package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invogen/internal/domain"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Append(ctx context.Context, inv *domain.Invoice, cap int) error {
	args := m.Called(ctx, inv, cap)
	return args.Error(0)
}

func (m *MockInvoiceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
