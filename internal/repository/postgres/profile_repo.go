package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type profileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo creates a new PostgreSQL-backed ProfileRepository.
func NewProfileRepo(db *sqlx.DB) port.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, accountID uuid.UUID) (*domain.BusinessProfile, error) {
	var profile domain.BusinessProfile
	err := r.db.GetContext(ctx, &profile,
		"SELECT * FROM business_profiles WHERE account_id = $1", accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("profileRepo.Get: %w", err)
	}
	return &profile, nil
}

func (r *profileRepo) Upsert(ctx context.Context, profile *domain.BusinessProfile) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now

	// last_invoice_number is deliberately excluded from the conflict
	// update: editing the profile must not reset the allocation counter.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO business_profiles (account_id, business_name, address, city, state,
			pincode, phone, email, website, gst_number, bank_name, account_number,
			ifsc_code, account_holder_name, logo_s3_key, primary_color, invoice_prefix,
			invoice_start_number, last_invoice_number, tax_rate_percent, currency_code,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, NULL, $19, $20, $21, $21)
		ON CONFLICT (account_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			pincode = EXCLUDED.pincode,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			gst_number = EXCLUDED.gst_number,
			bank_name = EXCLUDED.bank_name,
			account_number = EXCLUDED.account_number,
			ifsc_code = EXCLUDED.ifsc_code,
			account_holder_name = EXCLUDED.account_holder_name,
			logo_s3_key = EXCLUDED.logo_s3_key,
			primary_color = EXCLUDED.primary_color,
			invoice_prefix = EXCLUDED.invoice_prefix,
			invoice_start_number = EXCLUDED.invoice_start_number,
			tax_rate_percent = EXCLUDED.tax_rate_percent,
			currency_code = EXCLUDED.currency_code,
			updated_at = EXCLUDED.updated_at`,
		profile.AccountID, profile.BusinessName, profile.Address, profile.City,
		profile.State, profile.Pincode, profile.Phone, profile.Email, profile.Website,
		profile.GSTNumber, profile.BankName, profile.AccountNumber, profile.IFSCCode,
		profile.AccountHolderName, profile.LogoS3Key, profile.PrimaryColor,
		profile.InvoicePrefix, profile.InvoiceStartNumber, profile.TaxRatePercent,
		profile.CurrencyCode, now)
	if err != nil {
		return fmt.Errorf("profileRepo.Upsert: %w", err)
	}
	return nil
}

// AllocateInvoiceNumber advances the counter in one UPDATE ... RETURNING
// round trip. The COALESCE seeds the counter from invoice_start_number
// on first allocation.
func (r *profileRepo) AllocateInvoiceNumber(ctx context.Context, accountID uuid.UUID) (string, int64, error) {
	var row struct {
		Prefix string `db:"invoice_prefix"`
		Number int64  `db:"last_invoice_number"`
	}
	err := r.db.GetContext(ctx, &row, `
		UPDATE business_profiles
		SET last_invoice_number = COALESCE(last_invoice_number, invoice_start_number - 1) + 1,
			updated_at = NOW()
		WHERE account_id = $1
		RETURNING invoice_prefix, last_invoice_number`,
		accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, domain.ErrProfileNotFound
		}
		return "", 0, fmt.Errorf("profileRepo.AllocateInvoiceNumber: %w", err)
	}
	return row.Prefix, row.Number, nil
}
