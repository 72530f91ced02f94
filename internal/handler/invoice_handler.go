package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invogen/internal/service"
)

// InvoiceHandler handles invoice generation, preview, history, and export.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	exportService  service.ExportService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, exportService service.ExportService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, exportService: exportService}
}

// Generate handles POST /api/v1/invoices. Without email_to the response
// is the PDF itself; with email_to the PDF is relayed and a JSON
// summary is returned.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var input service.DraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.Generate(c.Request.Context(), accountID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.EmailedTo != "" {
		RespondOK(c, gin.H{
			"invoice_number": result.InvoiceNumber,
			"emailed_to":     result.EmailedTo,
			"message_id":     result.MessageID,
			"totals":         result.Totals,
		})
		return
	}
	servePDF(c, result.Filename, result.PDF)
}

// Preview handles POST /api/v1/invoices/preview
func (h *InvoiceHandler) Preview(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var input service.DraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.Preview(c.Request.Context(), accountID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	servePDF(c, result.Filename, result.PDF)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	invoices, err := h.invoiceService.List(c.Request.Context(), accountID, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: len(invoices), Limit: limit})
}

// Export handles GET /api/v1/invoices/export. Format defaults to xlsx;
// ?format=csv selects CSV.
func (h *InvoiceHandler) Export(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var (
		file *service.ExportFile
		err  error
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		file, err = h.exportService.ExportCSV(c.Request.Context(), accountID)
	case "xlsx":
		file, err = h.exportService.ExportXLSX(c.Request.Context(), accountID)
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be xlsx or csv")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func servePDF(c *gin.Context, filename string, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
