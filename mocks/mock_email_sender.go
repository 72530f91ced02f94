package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invogen/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceEmail(ctx context.Context, input port.SendInvoiceInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
