package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invogen/internal/domain"
)

// MockAccountRepo is a mock implementation of port.AccountRepository.
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, acct *domain.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Update(ctx context.Context, acct *domain.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockAccountRepo) DeductForInvoice(ctx context.Context, id uuid.UUID, freeLimit int64) error {
	args := m.Called(ctx, id, freeLimit)
	return args.Error(0)
}

func (m *MockAccountRepo) RefundInvoice(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepo) GrantCredits(ctx context.Context, id uuid.UUID, orderID string, credits int64) (bool, error) {
	args := m.Called(ctx, id, orderID, credits)
	return args.Bool(0), args.Error(1)
}
