// Package sequence issues sequential invoice numbers for a business
// profile. The persisted, concurrency-safe variant lives in the profile
// repository as a single UPDATE ... RETURNING; both follow the rules here.
package sequence

import (
	"fmt"

	"invogen/internal/domain"
)

// Next returns the value the next allocation will use without mutating
// the profile: lastInvoiceNumber + 1, or invoiceStartNumber when no
// invoice has been generated yet.
func Next(p *domain.BusinessProfile) int64 {
	if p.LastInvoiceNumber != nil {
		return *p.LastInvoiceNumber + 1
	}
	return p.InvoiceStartNumber
}

// Allocate advances the profile's counter and returns the formatted
// invoice number. Numbers are strictly increasing and never reused;
// the caller must persist the updated profile before or atomically with
// invoice generation.
func Allocate(p *domain.BusinessProfile) string {
	next := Next(p)
	p.LastInvoiceNumber = &next
	return Format(p.InvoicePrefix, next)
}

// Format renders "{prefix}-{n}" with n zero-padded to at least 4 digits.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}
