package domain

// Tier is the account class controlling generation eligibility.
// Upgrades are one-way: once an account leaves the free tier it
// never returns to it.
type Tier string

const (
	TierFree       Tier = "free"
	TierCredit     Tier = "credit"
	TierSubscriber Tier = "subscriber"
)

// ValidTiers enumerates the accepted tier values.
var ValidTiers = map[Tier]bool{
	TierFree:       true,
	TierCredit:     true,
	TierSubscriber: true,
}

// PaymentType classifies what a payment order purchases.
type PaymentType string

const (
	PaymentTypeCredits      PaymentType = "credits"
	PaymentTypeSubscription PaymentType = "subscription"
)

// ValidPaymentTypes enumerates the accepted payment type values.
var ValidPaymentTypes = map[PaymentType]bool{
	PaymentTypeCredits:      true,
	PaymentTypeSubscription: true,
}

// OrderStatus is the local lifecycle of a payment order.
type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"
	OrderStatusVerified OrderStatus = "verified"
	OrderStatusFailed   OrderStatus = "failed"
)

// LogoContentTypes maps allowed logo upload MIME types to file extensions.
var LogoContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// currencySymbols maps ISO currency codes to display symbols.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// CurrencySymbol returns the display symbol for a currency code,
// falling back to the code itself for unknown currencies.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}
