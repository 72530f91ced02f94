package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"invogen/internal/config"
	"invogen/internal/domain"
	"invogen/internal/port"
)

// CreateOrderInput is the DTO for payment order creation.
type CreateOrderInput struct {
	AmountMinor int64  `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency"`
	Type        string `json:"type" binding:"required"`
	Credits     int64  `json:"credits"`
}

// OrderView is the checkout payload returned to the frontend.
type OrderView struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"key_id,omitempty"`
}

// VerifyPaymentInput carries the checkout callback fields. The
// razorpay_* names are the gateway's, not ours.
type VerifyPaymentInput struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPaymentResult reports a successful verification.
type VerifyPaymentResult struct {
	PaymentID    string             `json:"payment_id"`
	OrderID      string             `json:"order_id"`
	AmountMinor  int64              `json:"amount"`
	CreditsAdded int64              `json:"credits_added"`
	Type         domain.PaymentType `json:"type"`
}

// OrderStatusView combines gateway and local order state.
type OrderStatusView struct {
	OrderID     string             `json:"order_id"`
	Status      string             `json:"status"`
	AmountMinor int64              `json:"amount"`
	Currency    string             `json:"currency"`
	LocalStatus domain.OrderStatus `json:"local_status"`
	Credits     int64              `json:"credits"`
	Type        domain.PaymentType `json:"type"`
}

// BillingService handles payment orders, verification, and webhooks.
type BillingService interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, input CreateOrderInput) (*OrderView, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentResult, error)
	OrderStatus(ctx context.Context, orderID string) (*OrderStatusView, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type billingService struct {
	accountRepo port.AccountRepository
	orderRepo   port.OrderRepository
	gateway     port.PaymentGateway
	billing     config.BillingConfig
	keyID       string
}

// NewBillingService creates a new BillingService implementation. keyID
// is the public Razorpay key echoed to the frontend for checkout.
func NewBillingService(
	accountRepo port.AccountRepository,
	orderRepo port.OrderRepository,
	gateway port.PaymentGateway,
	billing config.BillingConfig,
	keyID string,
) BillingService {
	return &billingService{
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		billing:     billing,
		keyID:       keyID,
	}
}

func (s *billingService) CreateOrder(ctx context.Context, accountID uuid.UUID, input CreateOrderInput) (*OrderView, error) {
	purpose := domain.PaymentType(input.Type)
	if !domain.ValidPaymentTypes[purpose] {
		return nil, domain.ErrInvalidOrder
	}
	if input.AmountMinor < s.billing.MinOrderMinor {
		return nil, domain.ErrInvalidOrder
	}
	if purpose == domain.PaymentTypeCredits && input.Credits <= 0 {
		return nil, domain.ErrInvalidOrder
	}
	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixNano())
	gw, err := s.gateway.CreateOrder(ctx, port.CreateOrderInput{
		AmountMinor: input.AmountMinor,
		Currency:    currency,
		Receipt:     receipt,
		Notes: map[string]string{
			"account_id": accountID.String(),
			"purpose":    string(purpose),
		},
	})
	if err != nil {
		return nil, err
	}

	order := &domain.PaymentOrder{
		OrderID:     gw.ID,
		AccountID:   accountID,
		AmountMinor: gw.AmountMinor,
		Currency:    gw.Currency,
		Purpose:     purpose,
		Credits:     input.Credits,
		Receipt:     gw.Receipt,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("billing.CreateOrder persist: %w", err)
	}

	return &OrderView{
		ID:       gw.ID,
		Amount:   gw.AmountMinor,
		Currency: gw.Currency,
		Receipt:  gw.Receipt,
		KeyID:    s.keyID,
	}, nil
}

// VerifyPayment is the checkout callback path: signature first, then the
// gateway's own view of the payment. Credits are granted only for
// captured payments, idempotently per order.
func (s *billingService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentResult, error) {
	if !s.gateway.VerifyPaymentSignature(input.OrderID, input.PaymentID, input.Signature) {
		return nil, domain.ErrSignatureMismatch
	}

	order, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.gateway.FetchPayment(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.OrderID != order.OrderID {
		return nil, domain.ErrInvalidOrder
	}
	if payment.Status != "captured" {
		return nil, domain.ErrPaymentNotCaptured
	}

	if err := s.orderRepo.MarkVerified(ctx, order.OrderID, payment.ID); err != nil {
		return nil, err
	}

	creditsAdded := int64(0)
	switch order.Purpose {
	case domain.PaymentTypeCredits:
		applied, err := s.accountRepo.GrantCredits(ctx, order.AccountID, order.OrderID, order.Credits)
		if err != nil {
			return nil, fmt.Errorf("billing.VerifyPayment grant: %w", err)
		}
		if applied {
			creditsAdded = order.Credits
		}
	case domain.PaymentTypeSubscription:
		if err := s.upgradeToSubscriber(ctx, order.AccountID); err != nil {
			return nil, err
		}
	}

	return &VerifyPaymentResult{
		PaymentID:    payment.ID,
		OrderID:      order.OrderID,
		AmountMinor:  order.AmountMinor,
		CreditsAdded: creditsAdded,
		Type:         order.Purpose,
	}, nil
}

func (s *billingService) OrderStatus(ctx context.Context, orderID string) (*OrderStatusView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status := "unknown"
	if gw, err := s.gateway.FetchOrder(ctx, orderID); err == nil {
		status = gw.Status
	} else {
		log.Printf("[billing] gateway order fetch failed for %s: %v", orderID, err)
	}

	return &OrderStatusView{
		OrderID:     order.OrderID,
		Status:      status,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		LocalStatus: order.Status,
		Credits:     order.Credits,
		Type:        order.Purpose,
	}, nil
}

// webhookEvent is the subset of the Razorpay webhook envelope we read.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook applies payment.captured and payment.failed events.
// Unhandled event types are logged and acknowledged without action.
func (s *billingService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return domain.ErrSignatureMismatch
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("billing.HandleWebhook decode: %w", err)
	}

	switch event.Event {
	case "payment.captured":
		return s.applyCaptured(ctx, event.Payload.Payment.Entity.OrderID, event.Payload.Payment.Entity.ID)
	case "payment.failed":
		orderID := event.Payload.Payment.Entity.OrderID
		if err := s.orderRepo.MarkFailed(ctx, orderID); err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		return nil
	default:
		log.Printf("[billing] unhandled webhook event %q acknowledged", event.Event)
		return nil
	}
}

func (s *billingService) applyCaptured(ctx context.Context, orderID, paymentID string) error {
	if orderID == "" || paymentID == "" {
		return domain.ErrInvalidOrder
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			// Not one of ours; acknowledge.
			log.Printf("[billing] webhook for unknown order %s acknowledged", orderID)
			return nil
		}
		return err
	}

	if err := s.orderRepo.MarkVerified(ctx, orderID, paymentID); err != nil {
		return err
	}

	switch order.Purpose {
	case domain.PaymentTypeCredits:
		if _, err := s.accountRepo.GrantCredits(ctx, order.AccountID, orderID, order.Credits); err != nil {
			return fmt.Errorf("billing.applyCaptured grant: %w", err)
		}
	case domain.PaymentTypeSubscription:
		if err := s.upgradeToSubscriber(ctx, order.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func (s *billingService) upgradeToSubscriber(ctx context.Context, accountID uuid.UUID) error {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.Tier == domain.TierSubscriber {
		return nil
	}
	acct.Tier = domain.TierSubscriber
	return s.accountRepo.Update(ctx, acct)
}
