package port

import "context"

// GatewayOrder is a payment order as reported by the gateway.
type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
	Status      string
}

// GatewayPayment is a payment as reported by the gateway.
type GatewayPayment struct {
	ID          string
	OrderID     string
	AmountMinor int64
	Currency    string
	Status      string
}

// CreateOrderInput carries the parameters for a new gateway order.
// Amount is in minor units (paise for INR).
type CreateOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// PaymentGateway abstracts the payment provider's REST API.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)

	// VerifyPaymentSignature checks the HMAC-SHA256 signature over
	// "orderID|paymentID" issued at checkout.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// VerifyWebhookSignature checks the HMAC-SHA256 signature over the
	// raw webhook body.
	VerifyWebhookSignature(body []byte, signature string) bool
}
