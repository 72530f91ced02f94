package port

import "context"

// SendInvoiceInput is the structured payload handed to the email relay.
// Total is preformatted with the invoice's currency symbol.
type SendInvoiceInput struct {
	To            string
	ClientName    string
	BusinessName  string
	InvoiceNumber string
	Total         string
	Filename      string
	PDF           []byte
}

// EmailSender defines the contract for delivering invoice emails.
// Implementations apply their own timeout and report transient delivery
// failure as domain.ErrEmailSendFailed.
type EmailSender interface {
	SendInvoiceEmail(ctx context.Context, input SendInvoiceInput) (messageID string, err error)
}
