package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invogen/internal/port"
)

// MockPaymentGateway is a mock implementation of port.PaymentGateway.
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, input port.CreateOrderInput) (*port.GatewayOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayOrder), args.Error(1)
}

func (m *MockPaymentGateway) FetchOrder(ctx context.Context, orderID string) (*port.GatewayOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayOrder), args.Error(1)
}

func (m *MockPaymentGateway) FetchPayment(ctx context.Context, paymentID string) (*port.GatewayPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayPayment), args.Error(1)
}

func (m *MockPaymentGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}
