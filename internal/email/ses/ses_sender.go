package ses

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invogen/internal/domain"
	"invogen/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
	timeout     time.Duration
}

// NewSESSender creates a new SES-backed EmailSender. Invoice emails carry
// a PDF attachment, so they are sent as raw MIME rather than the simple
// content type.
func NewSESSender(region, fromAddress, fromName, frontendURL string, timeout time.Duration) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
		timeout:     timeout,
	}, nil
}

func (s *sesSender) SendInvoiceEmail(ctx context.Context, input port.SendInvoiceInput) (string, error) {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	raw, err := buildInvoiceMIME(from, input, s.frontendURL)
	if err != nil {
		return "", fmt.Errorf("building invoice email: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{input.To},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		// Timeouts and provider errors alike are retryable from the
		// caller's point of view.
		return "", fmt.Errorf("%w: %v", domain.ErrEmailSendFailed, err)
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	return messageID, nil
}
