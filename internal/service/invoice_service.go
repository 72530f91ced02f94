package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"invogen/internal/config"
	"invogen/internal/domain"
	"invogen/internal/money"
	"invogen/internal/pdf"
	"invogen/internal/port"
	"invogen/internal/sequence"
)

// DraftInput is the DTO for invoice generation and preview requests.
type DraftInput struct {
	Client struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"omitempty,email"`
		Phone string `json:"phone"`
	} `json:"client" binding:"required"`
	Items []struct {
		Description string  `json:"description" binding:"required"`
		Quantity    float64 `json:"quantity" binding:"required,gt=0"`
		UnitRate    float64 `json:"unit_rate" binding:"required,gte=0"`
	} `json:"items" binding:"required,min=1,dive"`
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	// When set, the generated PDF is emailed to this address instead of
	// returned inline.
	EmailTo string `json:"email_to" binding:"omitempty,email"`
}

// GenerateResult is what invoice generation produces.
type GenerateResult struct {
	InvoiceNumber string
	Filename      string
	PDF           []byte
	Totals        domain.Totals
	EmailedTo     string
	MessageID     string
}

// InvoiceService orchestrates invoice generation: metering, numbering,
// rendering, history, and optional email relay.
type InvoiceService interface {
	Generate(ctx context.Context, accountID uuid.UUID, input DraftInput) (*GenerateResult, error)
	Preview(ctx context.Context, accountID uuid.UUID, input DraftInput) (*GenerateResult, error)
	List(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error)
}

type invoiceService struct {
	accountRepo port.AccountRepository
	profileRepo port.ProfileRepository
	invoiceRepo port.InvoiceRepository
	storage     port.ObjectStorage
	email       port.EmailSender
	renderer    *pdf.Renderer
	s3cfg       config.S3Config
	billing     config.BillingConfig
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	accountRepo port.AccountRepository,
	profileRepo port.ProfileRepository,
	invoiceRepo port.InvoiceRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	renderer *pdf.Renderer,
	s3cfg config.S3Config,
	billing config.BillingConfig,
) InvoiceService {
	return &invoiceService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		invoiceRepo: invoiceRepo,
		storage:     storage,
		email:       email,
		renderer:    renderer,
		s3cfg:       s3cfg,
		billing:     billing,
	}
}

// Generate runs the full pipeline. The credit deduction happens before
// rendering and is refunded if the render fails; a failed email send
// after the invoice is persisted is reported but not refunded, since
// the invoice number and history entry already exist.
func (s *invoiceService) Generate(ctx context.Context, accountID uuid.UUID, input DraftInput) (*GenerateResult, error) {
	draft, err := buildDraft(input)
	if err != nil {
		return nil, err
	}
	emailTo := strings.TrimSpace(input.EmailTo)

	profile, err := s.profileRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.DeductForInvoice(ctx, accountID, s.billing.FreeInvoiceLimit); err != nil {
		return nil, err
	}

	prefix, number, err := s.profileRepo.AllocateInvoiceNumber(ctx, accountID)
	if err != nil {
		s.refund(ctx, accountID)
		return nil, err
	}
	invoiceNumber := sequence.Format(prefix, number)

	totals := money.ComputeTotals(draft.Items, profile.TaxRatePercent)
	pdfBytes, err := s.render(ctx, profile, draft, totals, invoiceNumber)
	if err != nil {
		s.refund(ctx, accountID)
		return nil, err
	}

	rawDraft, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("invoice.Generate marshal draft: %w", err)
	}
	record := &domain.Invoice{
		AccountID:     accountID,
		InvoiceNumber: invoiceNumber,
		ClientName:    draft.Client.Name,
		Draft:         rawDraft,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		CurrencyCode:  profile.CurrencyCode,
	}
	if err := s.invoiceRepo.Append(ctx, record, s.billing.HistoryLimit); err != nil {
		// The PDF is already rendered and numbered; losing the history
		// row is not worth failing the generation.
		log.Printf("[invoice] history append failed for %s: %v", invoiceNumber, err)
	}

	result := &GenerateResult{
		InvoiceNumber: invoiceNumber,
		Filename:      fmt.Sprintf("%s.pdf", invoiceNumber),
		PDF:           pdfBytes,
		Totals:        totals,
	}

	if emailTo != "" {
		messageID, err := s.email.SendInvoiceEmail(ctx, port.SendInvoiceInput{
			To:            emailTo,
			ClientName:    draft.Client.Name,
			BusinessName:  profile.BusinessName,
			InvoiceNumber: invoiceNumber,
			Total:         formatTotal(profile.CurrencyCode, totals.Total),
			Filename:      result.Filename,
			PDF:           pdfBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: invoice %s generated but not delivered", domain.ErrEmailSendFailed, invoiceNumber)
		}
		result.EmailedTo = emailTo
		result.MessageID = messageID
	}
	return result, nil
}

// Preview renders without consuming credits, allocating a number, or
// touching history. The rendered PDF shows the number the next
// generation would use.
func (s *invoiceService) Preview(ctx context.Context, accountID uuid.UUID, input DraftInput) (*GenerateResult, error) {
	draft, err := buildDraft(input)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	invoiceNumber := sequence.Format(profile.InvoicePrefix, sequence.Next(profile))
	totals := money.ComputeTotals(draft.Items, profile.TaxRatePercent)
	pdfBytes, err := s.render(ctx, profile, draft, totals, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		InvoiceNumber: invoiceNumber,
		Filename:      fmt.Sprintf("%s-preview.pdf", invoiceNumber),
		PDF:           pdfBytes,
		Totals:        totals,
	}, nil
}

func (s *invoiceService) List(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Invoice, error) {
	if limit <= 0 || limit > s.billing.HistoryLimit {
		limit = s.billing.HistoryLimit
	}
	return s.invoiceRepo.ListByAccount(ctx, accountID, limit)
}

func (s *invoiceService) render(ctx context.Context, profile *domain.BusinessProfile, draft *domain.InvoiceDraft, totals domain.Totals, invoiceNumber string) ([]byte, error) {
	var logo []byte
	if profile.LogoS3Key != "" {
		data, err := s.storage.Download(ctx, s.s3cfg.Bucket, profile.LogoS3Key)
		if err != nil {
			// Render without the logo rather than failing the invoice.
			log.Printf("[invoice] logo download failed for %s: %v", profile.AccountID, err)
		} else {
			logo = data
		}
	}
	return s.renderer.Render(pdf.RenderInput{
		Profile:       profile,
		Draft:         draft,
		Totals:        totals,
		InvoiceNumber: invoiceNumber,
		Logo:          logo,
		GeneratedAt:   time.Now(),
	})
}

func (s *invoiceService) refund(ctx context.Context, accountID uuid.UUID) {
	if err := s.accountRepo.RefundInvoice(ctx, accountID); err != nil {
		log.Printf("[invoice] refund failed for %s: %v", accountID, err)
	}
}

func buildDraft(input DraftInput) (*domain.InvoiceDraft, error) {
	if strings.TrimSpace(input.Client.Name) == "" || len(input.Items) == 0 {
		return nil, domain.ErrDraftInvalid
	}
	draft := &domain.InvoiceDraft{
		Client: domain.Client{
			Name:  strings.TrimSpace(input.Client.Name),
			Email: strings.TrimSpace(input.Client.Email),
			Phone: strings.TrimSpace(input.Client.Phone),
		},
		IssueDate: input.IssueDate,
		DueDate:   input.DueDate,
	}
	if draft.IssueDate.IsZero() {
		draft.IssueDate = time.Now()
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.Description) == "" || item.Quantity <= 0 || item.UnitRate < 0 {
			return nil, domain.ErrDraftInvalid
		}
		draft.Items = append(draft.Items, domain.LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitRate:    item.UnitRate,
		})
	}
	return draft, nil
}

func formatTotal(currencyCode string, total float64) string {
	return fmt.Sprintf("%s %.2f", domain.CurrencySymbol(currencyCode), total)
}
