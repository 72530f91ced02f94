package csvexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invogen/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 11)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Generated At", row[10])
}

func TestWriteInvoices(t *testing.T) {
	draft := domain.InvoiceDraft{
		Client: domain.Client{Name: "Acme Corp", Email: "billing@acme.test"},
		Items: []domain.LineItem{
			{Description: "Design", Quantity: 2, UnitRate: 500},
			{Description: "Hosting", Quantity: 1, UnitRate: 1200},
		},
		IssueDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	rawDraft, err := json.Marshal(draft)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteInvoices([]domain.Invoice{{
		ID:            uuid.New(),
		AccountID:     uuid.New(),
		InvoiceNumber: "SN-0042",
		ClientName:    "Acme Corp",
		Draft:         rawDraft,
		Subtotal:      2200,
		TaxAmount:     396,
		Total:         2596,
		CurrencyCode:  "INR",
		CreatedAt:     time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "SN-0042", row[0])
	assert.Equal(t, "Acme Corp", row[1])
	assert.Equal(t, "billing@acme.test", row[2])
	assert.Equal(t, "2025-01-15", row[3])
	assert.Equal(t, "2025-02-15", row[4])
	assert.Equal(t, "2", row[5])
	assert.Equal(t, "2200.00", row[6])
	assert.Equal(t, "396.00", row[7])
	assert.Equal(t, "2596.00", row[8])
	assert.Equal(t, "INR", row[9])
}

func TestWriteInvoices_BadDraftSnapshot(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{{
		InvoiceNumber: "SN-0001",
		ClientName:    "Acme Corp",
		Draft:         []byte("{not json"),
		Subtotal:      100,
		Total:         118,
		CurrencyCode:  "INR",
	}}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	// draft-derived columns empty, metadata columns intact
	assert.Equal(t, "SN-0001", row[0])
	assert.Equal(t, "", row[2])
	assert.Equal(t, "", row[5])
	assert.Equal(t, "100.00", row[6])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Studio_Nine", SanitizeFilename("Studio Nine"))
	assert.Equal(t, "a_b_c", SanitizeFilename("a / b & c"))
	assert.Equal(t, "trimmed", SanitizeFilename("__trimmed__"))
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("Studio Nine", "csv")
	assert.Contains(t, name, "Studio_Nine_invoices_")
	assert.Contains(t, name, ".csv")

	fallback := BuildFilename("!!!", "xlsx")
	assert.Contains(t, fallback, "invoices_invoices_")
}
