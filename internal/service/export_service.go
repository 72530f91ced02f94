package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"invogen/internal/csvexport"
	"invogen/internal/domain"
	"invogen/internal/port"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders invoice history as downloadable files.
type ExportService interface {
	ExportXLSX(ctx context.Context, accountID uuid.UUID) (*ExportFile, error)
	ExportCSV(ctx context.Context, accountID uuid.UUID) (*ExportFile, error)
}

type exportService struct {
	invoiceRepo  port.InvoiceRepository
	profileRepo  port.ProfileRepository
	historyLimit int
}

// NewExportService creates a new ExportService implementation.
func NewExportService(invoiceRepo port.InvoiceRepository, profileRepo port.ProfileRepository, historyLimit int) ExportService {
	return &exportService{
		invoiceRepo:  invoiceRepo,
		profileRepo:  profileRepo,
		historyLimit: historyLimit,
	}
}

var xlsxHeaders = []string{
	"Invoice Number", "Client Name", "Client Email", "Issue Date", "Due Date",
	"Items", "Subtotal", "Tax Amount", "Total", "Currency", "Generated At",
}

func (s *exportService) ExportXLSX(ctx context.Context, accountID uuid.UUID) (*ExportFile, error) {
	invoices, businessName, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoices"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("export.XLSX header: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "K", 18); err != nil {
		return nil, fmt.Errorf("export.XLSX widths: %w", err)
	}

	for i := range invoices {
		values := xlsxRow(&invoices[i])
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("export.XLSX row %d: %w", i+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export.XLSX encode: %w", err)
	}
	return &ExportFile{
		Filename:    csvexport.BuildFilename(businessName, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func (s *exportService) ExportCSV(ctx context.Context, accountID uuid.UUID) (*ExportFile, error) {
	invoices, businessName, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("export.CSV header: %w", err)
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return nil, fmt.Errorf("export.CSV rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export.CSV flush: %w", err)
	}

	return &ExportFile{
		Filename:    csvexport.BuildFilename(businessName, "csv"),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func (s *exportService) load(ctx context.Context, accountID uuid.UUID) ([]domain.Invoice, string, error) {
	invoices, err := s.invoiceRepo.ListByAccount(ctx, accountID, s.historyLimit)
	if err != nil {
		return nil, "", err
	}
	businessName := ""
	profile, err := s.profileRepo.Get(ctx, accountID)
	if err == nil {
		businessName = profile.BusinessName
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, "", err
	}
	return invoices, businessName, nil
}

func xlsxRow(inv *domain.Invoice) []any {
	row := []any{
		inv.InvoiceNumber, inv.ClientName, "", "", "", "",
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.CurrencyCode,
		inv.CreatedAt.Format(time.RFC3339),
	}
	var draft domain.InvoiceDraft
	if len(inv.Draft) > 0 && json.Unmarshal(inv.Draft, &draft) == nil {
		row[2] = draft.Client.Email
		if !draft.IssueDate.IsZero() {
			row[3] = draft.IssueDate.Format("2006-01-02")
		}
		if !draft.DueDate.IsZero() {
			row[4] = draft.DueDate.Format("2006-01-02")
		}
		row[5] = strconv.Itoa(len(draft.Items))
	}
	return row
}
