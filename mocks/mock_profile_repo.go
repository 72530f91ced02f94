package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invogen/internal/domain"
)

// MockProfileRepo is a mock implementation of port.ProfileRepository.
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Get(ctx context.Context, accountID uuid.UUID) (*domain.BusinessProfile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessProfile), args.Error(1)
}

func (m *MockProfileRepo) Upsert(ctx context.Context, profile *domain.BusinessProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepo) AllocateInvoiceNumber(ctx context.Context, accountID uuid.UUID) (string, int64, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}
