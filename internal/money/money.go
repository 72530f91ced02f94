// Package money computes invoice totals. All functions are pure and safe
// to call on every draft edit.
package money

import (
	"math"

	"invogen/internal/domain"
)

// ComputeTotals derives subtotal, tax, and total from the given line items.
// Accumulation is unrounded to avoid compounding rounding error across many
// items; only the returned figures are rounded to 2 decimal places.
// Malformed numeric input (negative, NaN, ±Inf) is coerced to 0 rather
// than rejected.
func ComputeTotals(items []domain.LineItem, taxRatePercent float64) domain.Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += coerce(item.Quantity) * coerce(item.UnitRate)
	}

	rate := coerce(taxRatePercent)
	taxAmount := subtotal * rate / 100

	return domain.Totals{
		Subtotal:  Round2(subtotal),
		TaxRate:   rate,
		TaxAmount: Round2(taxAmount),
		Total:     Round2(subtotal + taxAmount),
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func coerce(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
