package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invogen/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Invoice Number",
	"Client Name",
	"Client Email",
	"Issue Date",
	"Due Date",
	"Line Item Count",
	"Subtotal",
	"Tax Amount",
	"Total",
	"Currency",
	"Generated At",
}

// Writer wraps csv.Writer for exporting invoice history as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of history records to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		row := invoiceToRow(&invoices[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// invoiceToRow converts one history record to a row. Draft-derived
// columns are left empty when the stored snapshot does not decode.
func invoiceToRow(inv *domain.Invoice) []string {
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	row[1] = inv.ClientName
	row[6] = formatMoney(inv.Subtotal)
	row[7] = formatMoney(inv.TaxAmount)
	row[8] = formatMoney(inv.Total)
	row[9] = inv.CurrencyCode
	row[10] = inv.CreatedAt.Format(time.RFC3339)

	if len(inv.Draft) == 0 {
		return row
	}
	var draft domain.InvoiceDraft
	if err := json.Unmarshal(inv.Draft, &draft); err != nil {
		return row
	}
	row[2] = draft.Client.Email
	row[3] = formatDate(draft.IssueDate)
	row[4] = formatDate(draft.DueDate)
	row[5] = strconv.Itoa(len(draft.Items))
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a business name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the export download.
// Format: {sanitized_business_name}_invoices_{YYYY-MM-DD}.{ext}
func BuildFilename(businessName, ext string) string {
	sanitized := SanitizeFilename(businessName)
	if sanitized == "" {
		sanitized = "invoices"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_invoices_%s.%s", sanitized, date, ext)
}
