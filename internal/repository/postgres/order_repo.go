package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type orderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo creates a new PostgreSQL-backed OrderRepository.
func NewOrderRepo(db *sqlx.DB) port.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.PaymentOrder) error {
	order.CreatedAt = time.Now().UTC()
	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_orders (order_id, account_id, amount_minor, currency,
			purpose, credits, receipt, status, payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.OrderID, order.AccountID, order.AmountMinor, order.Currency,
		order.Purpose, order.Credits, order.Receipt, order.Status,
		order.PaymentID, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("orderRepo.Create: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var order domain.PaymentOrder
	err := r.db.GetContext(ctx, &order,
		"SELECT * FROM payment_orders WHERE order_id = $1", orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("orderRepo.GetByID: %w", err)
	}
	return &order, nil
}

func (r *orderRepo) MarkVerified(ctx context.Context, orderID, paymentID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payment_orders
		SET status = $1, payment_id = $2, verified_at = NOW()
		WHERE order_id = $3`,
		domain.OrderStatusVerified, paymentID, orderID)
	if err != nil {
		return fmt.Errorf("orderRepo.MarkVerified: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) MarkFailed(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payment_orders
		SET status = $1
		WHERE order_id = $2 AND status <> $3`,
		domain.OrderStatusFailed, orderID, domain.OrderStatusVerified)
	if err != nil {
		return fmt.Errorf("orderRepo.MarkFailed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either missing or already verified; verified orders stay verified.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM payment_orders WHERE order_id = $1)", orderID); err != nil {
			return fmt.Errorf("orderRepo.MarkFailed check: %w", err)
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
	}
	return nil
}
