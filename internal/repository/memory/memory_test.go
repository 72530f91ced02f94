package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invogen/internal/domain"
)

func newAccount(t *testing.T, repo *accountRepo, tier domain.Tier, credits int64) *domain.Account {
	t.Helper()
	acct := &domain.Account{
		Email:            fmt.Sprintf("%s@example.com", uuid.New()),
		PasswordHash:     "hash",
		FullName:         "Test Account",
		Tier:             tier,
		CreditsRemaining: credits,
		IsActive:         true,
	}
	require.NoError(t, repo.Create(context.Background(), acct))
	return acct
}

func TestAccountRepo_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()

	acct := &domain.Account{Email: "dup@example.com", Tier: domain.TierFree, IsActive: true}
	require.NoError(t, repo.Create(ctx, acct))

	err := repo.Create(ctx, &domain.Account{Email: "dup@example.com", Tier: domain.TierFree})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAccountRepo_DeductFreeTier(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()
	acct := newAccount(t, repo, domain.TierFree, 0)

	require.NoError(t, repo.DeductForInvoice(ctx, acct.ID, 2))
	require.NoError(t, repo.DeductForInvoice(ctx, acct.ID, 2))
	assert.ErrorIs(t, repo.DeductForInvoice(ctx, acct.ID, 2), domain.ErrCreditsExhausted)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.InvoicesUsed)
}

func TestAccountRepo_DeductCreditTier(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()
	acct := newAccount(t, repo, domain.TierCredit, 1)

	require.NoError(t, repo.DeductForInvoice(ctx, acct.ID, 2))
	assert.ErrorIs(t, repo.DeductForInvoice(ctx, acct.ID, 2), domain.ErrCreditsExhausted)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CreditsRemaining)
}

func TestAccountRepo_SubscriberUnlimited(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()
	acct := newAccount(t, repo, domain.TierSubscriber, 0)

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.DeductForInvoice(ctx, acct.ID, 2))
	}
	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.InvoicesUsed)
	assert.Equal(t, int64(0), got.CreditsRemaining)
}

func TestAccountRepo_RefundReversesDeduct(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()
	acct := newAccount(t, repo, domain.TierCredit, 3)

	require.NoError(t, repo.DeductForInvoice(ctx, acct.ID, 2))
	require.NoError(t, repo.RefundInvoice(ctx, acct.ID))

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.CreditsRemaining)
	assert.Equal(t, int64(0), got.InvoicesUsed)
}

func TestAccountRepo_GrantCreditsIdempotent(t *testing.T) {
	repo := NewAccountRepo().(*accountRepo)
	ctx := context.Background()
	acct := newAccount(t, repo, domain.TierFree, 0)

	applied, err := repo.GrantCredits(ctx, acct.ID, "order_A", 25)
	require.NoError(t, err)
	assert.True(t, applied)

	// replaying the same order applies nothing
	applied, err = repo.GrantCredits(ctx, acct.ID, "order_A", 25)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierCredit, got.Tier)
	assert.Equal(t, int64(25), got.CreditsRemaining)
	assert.Equal(t, int64(25), got.TotalCreditsPurchased)
}

func TestProfileRepo_AllocateInvoiceNumber(t *testing.T) {
	repo := NewProfileRepo().(*profileRepo)
	ctx := context.Background()
	accountID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, &domain.BusinessProfile{
		AccountID:          accountID,
		BusinessName:       "Studio Nine",
		InvoicePrefix:      "SN",
		InvoiceStartNumber: 100,
	}))

	prefix, n, err := repo.AllocateInvoiceNumber(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "SN", prefix)
	assert.Equal(t, int64(100), n)

	_, n, err = repo.AllocateInvoiceNumber(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(101), n)

	// re-upserting the profile must not reset the counter
	require.NoError(t, repo.Upsert(ctx, &domain.BusinessProfile{
		AccountID:          accountID,
		BusinessName:       "Studio Nine Renamed",
		InvoicePrefix:      "SN",
		InvoiceStartNumber: 100,
	}))
	_, n, err = repo.AllocateInvoiceNumber(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(102), n)
}

func TestProfileRepo_AllocateWithoutProfile(t *testing.T) {
	repo := NewProfileRepo().(*profileRepo)
	_, _, err := repo.AllocateInvoiceNumber(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestInvoiceRepo_AppendCapsHistory(t *testing.T) {
	repo := NewInvoiceRepo().(*invoiceRepo)
	ctx := context.Background()
	accountID := uuid.New()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Append(ctx, &domain.Invoice{
			AccountID:     accountID,
			InvoiceNumber: fmt.Sprintf("SN-%04d", i+1),
		}, 5))
	}

	records, err := repo.ListByAccount(ctx, accountID, 50)
	require.NoError(t, err)
	require.Len(t, records, 5)
	// newest first; the two oldest were evicted
	assert.Equal(t, "SN-0007", records[0].InvoiceNumber)
	assert.Equal(t, "SN-0003", records[4].InvoiceNumber)
}

func TestOrderRepo_Lifecycle(t *testing.T) {
	repo := NewOrderRepo().(*orderRepo)
	ctx := context.Background()

	order := &domain.PaymentOrder{
		OrderID:     "order_ABC",
		AccountID:   uuid.New(),
		AmountMinor: 19900,
		Currency:    "INR",
		Purpose:     domain.PaymentTypeCredits,
		Credits:     25,
	}
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, domain.OrderStatusCreated, order.Status)

	require.NoError(t, repo.MarkVerified(ctx, "order_ABC", "pay_XYZ"))
	got, err := repo.GetByID(ctx, "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, got.Status)
	assert.Equal(t, "pay_XYZ", got.PaymentID)
	require.NotNil(t, got.VerifiedAt)

	// verified orders never move to failed
	require.NoError(t, repo.MarkFailed(ctx, "order_ABC"))
	got, err = repo.GetByID(ctx, "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, got.Status)

	_, err = repo.GetByID(ctx, "order_MISSING")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
