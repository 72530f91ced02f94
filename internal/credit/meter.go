// Package credit implements the in-memory credit meter gating invoice
// generation. The persisted, concurrency-safe variant of Deduct lives in
// the account repository as a single conditional UPDATE; this package is
// the authoritative statement of the tier rules.
package credit

import (
	"invogen/internal/domain"
)

// DefaultFreeInvoiceLimit is the number of invoices a free-tier account
// may generate in total.
const DefaultFreeInvoiceLimit = 2

// Meter applies tier-based generation rules to an account.
type Meter struct {
	freeLimit int64
}

// NewMeter creates a Meter with the given free-tier lifetime limit.
// A non-positive limit falls back to the default.
func NewMeter(freeLimit int64) *Meter {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeInvoiceLimit
	}
	return &Meter{freeLimit: freeLimit}
}

// CanGenerate reports whether the account is currently entitled to
// generate an invoice. It never mutates the account.
func (m *Meter) CanGenerate(acct *domain.Account) bool {
	switch acct.Tier {
	case domain.TierSubscriber:
		return true
	case domain.TierFree:
		return acct.InvoicesUsed < m.freeLimit
	case domain.TierCredit:
		return acct.CreditsRemaining > 0
	default:
		return false
	}
}

// Deduct consumes one generation entitlement. The mutation is
// all-or-nothing: on ErrCreditsExhausted the account is unchanged.
// Exhaustion is a normal negative result, not a fault.
func (m *Meter) Deduct(acct *domain.Account) error {
	switch acct.Tier {
	case domain.TierSubscriber:
		// Unlimited. Nothing is consumed, so nothing changes.
		return nil
	case domain.TierFree:
		if acct.InvoicesUsed >= m.freeLimit {
			return domain.ErrCreditsExhausted
		}
		acct.InvoicesUsed++
		return nil
	case domain.TierCredit:
		if acct.CreditsRemaining <= 0 {
			return domain.ErrCreditsExhausted
		}
		acct.CreditsRemaining--
		acct.InvoicesUsed++
		return nil
	default:
		return domain.ErrCreditsExhausted
	}
}

// Refund returns one previously deducted entitlement, used when rendering
// fails after a successful deduction. Subscribers are untouched since
// their Deduct consumes nothing.
func (m *Meter) Refund(acct *domain.Account) {
	if acct.Tier == domain.TierSubscriber {
		return
	}
	if acct.Tier == domain.TierCredit {
		acct.CreditsRemaining++
	}
	if acct.InvoicesUsed > 0 {
		acct.InvoicesUsed--
	}
}

// ApplyTopUp adds purchased credits and moves a free account to the
// credit tier. Subscribers keep their tier; the upgrade is one-way.
func (m *Meter) ApplyTopUp(acct *domain.Account, credits int64) {
	if credits <= 0 {
		return
	}
	if acct.Tier != domain.TierSubscriber {
		acct.Tier = domain.TierCredit
	}
	acct.CreditsRemaining += credits
	acct.TotalCreditsPurchased += credits
}
