package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invogen/internal/domain"
	"invogen/internal/port"
	"invogen/mocks"
)

func newBillingService(accountRepo *mocks.MockAccountRepo, orderRepo *mocks.MockOrderRepo,
	gateway *mocks.MockPaymentGateway) BillingService {
	return NewBillingService(accountRepo, orderRepo, gateway, testBilling(), "rzp_test_key")
}

func TestCreateOrder_PersistsAndReturnsCheckoutPayload(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in port.CreateOrderInput) bool {
		return in.AmountMinor == 19900 && in.Currency == "INR" && in.Notes["account_id"] == accountID.String()
	})).Return(&port.GatewayOrder{
		ID: "order_ABC", AmountMinor: 19900, Currency: "INR", Receipt: "rcpt_1", Status: "created",
	}, nil)
	orderRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.PaymentOrder) bool {
		return o.OrderID == "order_ABC" && o.Credits == 25 && o.Purpose == domain.PaymentTypeCredits
	})).Return(nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	view, err := svc.CreateOrder(context.Background(), accountID, CreateOrderInput{
		AmountMinor: 19900, Currency: "INR", Type: "credits", Credits: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", view.ID)
	assert.Equal(t, "rzp_test_key", view.KeyID)
	orderRepo.AssertExpectations(t)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc := newBillingService(new(mocks.MockAccountRepo), new(mocks.MockOrderRepo), new(mocks.MockPaymentGateway))
	accountID := uuid.New()

	// below minimum amount
	_, err := svc.CreateOrder(context.Background(), accountID, CreateOrderInput{
		AmountMinor: 50, Type: "credits", Credits: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	// unknown purchase type
	_, err = svc.CreateOrder(context.Background(), accountID, CreateOrderInput{
		AmountMinor: 19900, Type: "donation",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	// credits purchase without a credit count
	_, err = svc.CreateOrder(context.Background(), accountID, CreateOrderInput{
		AmountMinor: 19900, Type: "credits", Credits: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestVerifyPayment_GrantsCreditsOnce(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	order := &domain.PaymentOrder{
		OrderID: "order_ABC", AccountID: accountID, AmountMinor: 19900,
		Purpose: domain.PaymentTypeCredits, Credits: 25, Status: domain.OrderStatusCreated,
	}
	gateway.On("VerifyPaymentSignature", "order_ABC", "pay_XYZ", "sig").Return(true)
	orderRepo.On("GetByID", mock.Anything, "order_ABC").Return(order, nil)
	gateway.On("FetchPayment", mock.Anything, "pay_XYZ").Return(&port.GatewayPayment{
		ID: "pay_XYZ", OrderID: "order_ABC", AmountMinor: 19900, Status: "captured",
	}, nil)
	orderRepo.On("MarkVerified", mock.Anything, "order_ABC", "pay_XYZ").Return(nil)
	accountRepo.On("GrantCredits", mock.Anything, accountID, "order_ABC", int64(25)).Return(true, nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	result, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: "order_ABC", PaymentID: "pay_XYZ", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.CreditsAdded)
	assert.Equal(t, domain.PaymentTypeCredits, result.Type)
}

func TestVerifyPayment_ReplayAddsNothing(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	order := &domain.PaymentOrder{
		OrderID: "order_ABC", AccountID: accountID,
		Purpose: domain.PaymentTypeCredits, Credits: 25, Status: domain.OrderStatusVerified,
	}
	gateway.On("VerifyPaymentSignature", "order_ABC", "pay_XYZ", "sig").Return(true)
	orderRepo.On("GetByID", mock.Anything, "order_ABC").Return(order, nil)
	gateway.On("FetchPayment", mock.Anything, "pay_XYZ").Return(&port.GatewayPayment{
		ID: "pay_XYZ", OrderID: "order_ABC", Status: "captured",
	}, nil)
	orderRepo.On("MarkVerified", mock.Anything, "order_ABC", "pay_XYZ").Return(nil)
	accountRepo.On("GrantCredits", mock.Anything, accountID, "order_ABC", int64(25)).Return(false, nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	result, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: "order_ABC", PaymentID: "pay_XYZ", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.CreditsAdded)
}

func TestVerifyPayment_SignatureMismatch(t *testing.T) {
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	gateway.On("VerifyPaymentSignature", "order_ABC", "pay_XYZ", "bad").Return(false)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: "order_ABC", PaymentID: "pay_XYZ", Signature: "bad",
	})
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	orderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	accountRepo.AssertNotCalled(t, "GrantCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_NotCaptured(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	order := &domain.PaymentOrder{OrderID: "order_ABC", AccountID: accountID, Purpose: domain.PaymentTypeCredits, Credits: 25}
	gateway.On("VerifyPaymentSignature", "order_ABC", "pay_XYZ", "sig").Return(true)
	orderRepo.On("GetByID", mock.Anything, "order_ABC").Return(order, nil)
	gateway.On("FetchPayment", mock.Anything, "pay_XYZ").Return(&port.GatewayPayment{
		ID: "pay_XYZ", OrderID: "order_ABC", Status: "authorized",
	}, nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: "order_ABC", PaymentID: "pay_XYZ", Signature: "sig",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentNotCaptured)
	accountRepo.AssertNotCalled(t, "GrantCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_SubscriptionUpgradesTier(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	order := &domain.PaymentOrder{
		OrderID: "order_SUB", AccountID: accountID, AmountMinor: 49900,
		Purpose: domain.PaymentTypeSubscription,
	}
	acct := &domain.Account{ID: accountID, Tier: domain.TierFree, IsActive: true}

	gateway.On("VerifyPaymentSignature", "order_SUB", "pay_1", "sig").Return(true)
	orderRepo.On("GetByID", mock.Anything, "order_SUB").Return(order, nil)
	gateway.On("FetchPayment", mock.Anything, "pay_1").Return(&port.GatewayPayment{
		ID: "pay_1", OrderID: "order_SUB", Status: "captured",
	}, nil)
	orderRepo.On("MarkVerified", mock.Anything, "order_SUB", "pay_1").Return(nil)
	accountRepo.On("GetByID", mock.Anything, accountID).Return(acct, nil)
	accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Tier == domain.TierSubscriber
	})).Return(nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	result, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: "order_SUB", PaymentID: "pay_1", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentTypeSubscription, result.Type)
	accountRepo.AssertExpectations(t)
}

func TestHandleWebhook_CapturedGrantsCredits(t *testing.T) {
	accountID := uuid.New()
	accountRepo := new(mocks.MockAccountRepo)
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_XYZ","order_id":"order_ABC","status":"captured"}}}}`)
	order := &domain.PaymentOrder{OrderID: "order_ABC", AccountID: accountID, Purpose: domain.PaymentTypeCredits, Credits: 25}

	gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
	orderRepo.On("GetByID", mock.Anything, "order_ABC").Return(order, nil)
	orderRepo.On("MarkVerified", mock.Anything, "order_ABC", "pay_XYZ").Return(nil)
	accountRepo.On("GrantCredits", mock.Anything, accountID, "order_ABC", int64(25)).Return(true, nil)

	svc := newBillingService(accountRepo, orderRepo, gateway)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "whsig"))
	accountRepo.AssertExpectations(t)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	gateway := new(mocks.MockPaymentGateway)
	body := []byte(`{"event":"payment.captured"}`)
	gateway.On("VerifyWebhookSignature", body, "bad").Return(false)

	svc := newBillingService(new(mocks.MockAccountRepo), new(mocks.MockOrderRepo), gateway)
	err := svc.HandleWebhook(context.Background(), body, "bad")
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
}

func TestHandleWebhook_UnhandledEventAcknowledged(t *testing.T) {
	gateway := new(mocks.MockPaymentGateway)
	body := []byte(`{"event":"refund.processed","payload":{}}`)
	gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)

	orderRepo := new(mocks.MockOrderRepo)
	svc := newBillingService(new(mocks.MockAccountRepo), orderRepo, gateway)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "whsig"))
	orderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandleWebhook_FailedMarksOrder(t *testing.T) {
	gateway := new(mocks.MockPaymentGateway)
	orderRepo := new(mocks.MockOrderRepo)
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_XYZ","order_id":"order_ABC","status":"failed"}}}}`)

	gateway.On("VerifyWebhookSignature", body, "whsig").Return(true)
	orderRepo.On("MarkFailed", mock.Anything, "order_ABC").Return(nil)

	svc := newBillingService(new(mocks.MockAccountRepo), orderRepo, gateway)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "whsig"))
	orderRepo.AssertExpectations(t)
}

func TestOrderStatus_CombinesGatewayAndLocal(t *testing.T) {
	accountID := uuid.New()
	orderRepo := new(mocks.MockOrderRepo)
	gateway := new(mocks.MockPaymentGateway)

	order := &domain.PaymentOrder{
		OrderID: "order_ABC", AccountID: accountID, AmountMinor: 19900, Currency: "INR",
		Purpose: domain.PaymentTypeCredits, Credits: 25, Status: domain.OrderStatusVerified,
	}
	orderRepo.On("GetByID", mock.Anything, "order_ABC").Return(order, nil)
	gateway.On("FetchOrder", mock.Anything, "order_ABC").Return(&port.GatewayOrder{
		ID: "order_ABC", Status: "paid",
	}, nil)

	svc := newBillingService(new(mocks.MockAccountRepo), orderRepo, gateway)
	view, err := svc.OrderStatus(context.Background(), "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, "paid", view.Status)
	assert.Equal(t, domain.OrderStatusVerified, view.LocalStatus)
	assert.Equal(t, int64(25), view.Credits)
}
