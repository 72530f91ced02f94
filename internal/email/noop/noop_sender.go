package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"invogen/internal/port"
)

// Sender logs instead of sending. Used in local development when no
// email provider is configured.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendInvoiceEmail(_ context.Context, input port.SendInvoiceInput) (string, error) {
	messageID := uuid.New().String()
	log.Printf("[email:noop] would send invoice %s to %s (%d byte PDF, message_id=%s)",
		input.InvoiceNumber, input.To, len(input.PDF), messageID)
	return messageID, nil
}
