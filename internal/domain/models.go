package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Account represents an authenticated user of the invoice generator.
type Account struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	Email                 string    `db:"email" json:"email"`
	PasswordHash          string    `db:"password_hash" json:"-"`
	FullName              string    `db:"full_name" json:"full_name"`
	Tier                  Tier      `db:"tier" json:"tier"`
	CreditsRemaining      int64     `db:"credits_remaining" json:"credits_remaining"`
	InvoicesUsed          int64     `db:"invoices_used" json:"invoices_used"`
	TotalCreditsPurchased int64     `db:"total_credits_purchased" json:"total_credits_purchased"`
	IsActive              bool      `db:"is_active" json:"is_active"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// BusinessProfile holds the issuing business's identity, bank details,
// branding, and invoice numbering settings. One profile per account.
type BusinessProfile struct {
	AccountID          uuid.UUID `db:"account_id" json:"account_id"`
	BusinessName       string    `db:"business_name" json:"business_name"`
	Address            string    `db:"address" json:"address"`
	City               string    `db:"city" json:"city"`
	State              string    `db:"state" json:"state"`
	Pincode            string    `db:"pincode" json:"pincode"`
	Phone              string    `db:"phone" json:"phone"`
	Email              string    `db:"email" json:"email"`
	Website            string    `db:"website" json:"website"`
	GSTNumber          string    `db:"gst_number" json:"gst_number"`
	BankName           string    `db:"bank_name" json:"bank_name"`
	AccountNumber      string    `db:"account_number" json:"account_number"`
	IFSCCode           string    `db:"ifsc_code" json:"ifsc_code"`
	AccountHolderName  string    `db:"account_holder_name" json:"account_holder_name"`
	LogoS3Key          string    `db:"logo_s3_key" json:"logo_s3_key"`
	PrimaryColor       string    `db:"primary_color" json:"primary_color"`
	InvoicePrefix      string    `db:"invoice_prefix" json:"invoice_prefix"`
	InvoiceStartNumber int64     `db:"invoice_start_number" json:"invoice_start_number"`
	LastInvoiceNumber  *int64    `db:"last_invoice_number" json:"last_invoice_number"`
	TaxRatePercent     float64   `db:"tax_rate_percent" json:"tax_rate_percent"`
	CurrencyCode       string    `db:"currency_code" json:"currency_code"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// HasBankDetails reports whether the profile carries enough bank
// information to render the bank details block.
func (p *BusinessProfile) HasBankDetails() bool {
	return p.BankName != "" && p.AccountNumber != ""
}

// LineItem is one billable row of an invoice draft.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitRate    float64 `json:"unit_rate"`
}

// Amount returns quantity × unit rate, unrounded.
func (li LineItem) Amount() float64 {
	return li.Quantity * li.UnitRate
}

// Client identifies the invoice recipient.
type Client struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// InvoiceDraft is the in-progress invoice being edited. It carries no
// identity of its own until generation allocates an invoice number.
type InvoiceDraft struct {
	Client    Client     `json:"client"`
	Items     []LineItem `json:"items"`
	IssueDate time.Time  `json:"issue_date"`
	DueDate   time.Time  `json:"due_date"`
}

// Totals is derived from a draft's items and the profile's tax rate.
// Values are rounded to 2 decimal places for display.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxRate   float64 `json:"tax_rate"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Invoice is a write-once history record of a generated invoice.
type Invoice struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AccountID     uuid.UUID       `db:"account_id" json:"account_id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	ClientName    string          `db:"client_name" json:"client_name"`
	Draft         json.RawMessage `db:"draft" json:"draft"`
	Subtotal      float64         `db:"subtotal" json:"subtotal"`
	TaxAmount     float64         `db:"tax_amount" json:"tax_amount"`
	Total         float64         `db:"total" json:"total"`
	CurrencyCode  string          `db:"currency_code" json:"currency_code"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// PaymentOrder tracks a Razorpay order through creation and verification.
type PaymentOrder struct {
	OrderID     string      `db:"order_id" json:"order_id"`
	AccountID   uuid.UUID   `db:"account_id" json:"account_id"`
	AmountMinor int64       `db:"amount_minor" json:"amount_minor"`
	Currency    string      `db:"currency" json:"currency"`
	Purpose     PaymentType `db:"purpose" json:"purpose"`
	Credits     int64       `db:"credits" json:"credits"`
	Receipt     string      `db:"receipt" json:"receipt"`
	Status      OrderStatus `db:"status" json:"status"`
	PaymentID   string      `db:"payment_id" json:"payment_id"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	VerifiedAt  *time.Time  `db:"verified_at" json:"verified_at"`
}
