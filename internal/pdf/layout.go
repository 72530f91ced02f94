// Package pdf renders invoice drafts into paginated A4 documents using
// gofpdf. Layout is a deterministic cursor walk down the page: every
// section checks remaining room before drawing and moves to a fresh page
// when it would cross the bottom limit. Table rows are never split across
// pages; the table header is redrawn at the top of each continuation page.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"invogen/internal/domain"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	bottomLimit  = 272.0
	footerY      = 286.0
	contentWidth = pageWidth - marginLeft - marginRight

	lineHeight     = 5.0
	tableRowLineH  = 4.5
	tableCellPadX  = 2.0
	tableCellPadY  = 1.8
	tableHeaderH   = 8.0
	clientBoxW     = 92.0
	clientBoxH     = 30.0
	clientBoxPad   = 3.0
	totalsBoxW     = 72.0
	labelBoxH      = 11.0
	logoW          = 32.0
	logoH          = 20.0
)

// Item table column widths: description, quantity, rate, amount.
var colWidths = [4]float64{85, 20, 35, 40}

// RenderInput carries everything the renderer needs. Logo bytes are
// optional; undecodable bytes are skipped, never fatal.
type RenderInput struct {
	Profile       *domain.BusinessProfile
	Draft         *domain.InvoiceDraft
	Totals        domain.Totals
	InvoiceNumber string
	Logo          []byte
	GeneratedAt   time.Time
}

// Renderer produces invoice PDFs.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the invoice and returns the encoded PDF bytes.
func (r *Renderer) Render(in RenderInput) ([]byte, error) {
	doc, err := r.render(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// rowPlacement records where one table row landed, for layout tests.
type rowPlacement struct {
	page   int
	top    float64
	height float64
}

// document tracks the cursor and layout bookkeeping for one render.
type document struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	y      float64
	symbol string

	headerPages []int
	rows        []rowPlacement
}

func (r *Renderer) render(in RenderInput) (*document, error) {
	if in.Profile == nil || in.Draft == nil {
		return nil, fmt.Errorf("%w: missing profile or draft", domain.ErrRenderFailed)
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetAutoPageBreak(false, 0)

	d := &document{
		pdf:    p,
		tr:     p.UnicodeTranslatorFromDescriptor(""),
		symbol: pdfCurrencySymbol(in.Profile.CurrencyCode),
	}

	p.AddPage()
	d.y = marginTop

	d.drawHeader(in.Profile, in.Logo)
	d.drawContactBand(in.Profile)
	d.drawClientBlock(in.Draft, in.InvoiceNumber)
	d.drawItemTable(in.Draft.Items)
	d.drawTotals(in.Totals)
	d.drawBankDetails(in.Profile)
	d.drawFooter(in.GeneratedAt)

	if p.Err() {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, p.Error())
	}
	return d, nil
}

// ensureSpace starts a new page when h millimetres would not fit above
// the bottom limit. The cursor resets to the top margin.
func (d *document) ensureSpace(h float64) {
	if d.y+h > bottomLimit {
		d.pdf.AddPage()
		d.y = marginTop
	}
}

func (d *document) drawHeader(p *domain.BusinessProfile, logo []byte) {
	d.placeLogo(logo)

	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.Text(marginLeft, d.y+7, d.tr(orDefault(p.BusinessName, "Business Name")))
	d.y += 12

	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.SetTextColor(90, 90, 90)
	for _, line := range splitLines(p.Address) {
		d.pdf.Text(marginLeft, d.y, d.tr(line))
		d.y += lineHeight
	}
	if cityLine := joinNonEmpty(", ", p.City, p.State, p.Pincode); cityLine != "" {
		d.pdf.Text(marginLeft, d.y, d.tr(cityLine))
		d.y += lineHeight
	}

	// Keep the band at least as tall as the logo.
	if minY := marginTop + logoH + 4; d.y < minY {
		d.y = minY
	}

	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.Line(marginLeft, d.y, pageWidth-marginRight, d.y)
	d.y += 5
}

// placeLogo embeds the logo in the top-right corner of the first page.
// Bytes that do not decode as PNG or JPEG are skipped so a corrupt logo
// can never abort the document.
func (d *document) placeLogo(logo []byte) {
	if len(logo) == 0 {
		return
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(logo))
	if err != nil {
		log.Printf("pdf: skipping undecodable logo: %v", err)
		return
	}
	var imgType string
	switch format {
	case "png":
		imgType = "PNG"
	case "jpeg":
		imgType = "JPG"
	default:
		log.Printf("pdf: skipping logo with unsupported format %q", format)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imgType}
	d.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
	d.pdf.ImageOptions("logo", pageWidth-marginRight-logoW, marginTop, logoW, 0, false, opts, 0, "")
}

// drawContactBand renders labeled boxes for phone/email and GST/website.
// Absent fields contribute no box and no height; when only one field of a
// pair is present its box spans the full content width.
func (d *document) drawContactBand(p *domain.BusinessProfile) {
	pairs := [][2]labeledField{
		{{"Phone", p.Phone}, {"Email", p.Email}},
		{{"GST", p.GSTNumber}, {"Website", p.Website}},
	}
	for _, pair := range pairs {
		var present []labeledField
		for _, f := range pair {
			if f.value != "" {
				present = append(present, f)
			}
		}
		if len(present) == 0 {
			continue
		}
		d.ensureSpace(labelBoxH + 2)
		boxW := contentWidth / float64(len(present))
		x := marginLeft
		for _, f := range present {
			d.drawLabeledBox(x, boxW, f.label, f.value)
			x += boxW
		}
		d.y += labelBoxH + 2
	}
}

type labeledField struct {
	label string
	value string
}

func (d *document) drawLabeledBox(x, w float64, label, value string) {
	d.pdf.SetDrawColor(210, 210, 210)
	d.pdf.Rect(x, d.y, w, labelBoxH, "D")
	d.pdf.SetFont("Helvetica", "", 7)
	d.pdf.SetTextColor(130, 130, 130)
	d.pdf.Text(x+2, d.y+4, d.tr(label))
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.Text(x+2, d.y+8.5, d.tr(value))
}

// drawClientBlock renders the bordered Bill To box on the left and the
// invoice number/date column on the right.
func (d *document) drawClientBlock(draft *domain.InvoiceDraft, invoiceNumber string) {
	d.ensureSpace(clientBoxH + 6)
	top := d.y

	d.pdf.SetDrawColor(160, 160, 160)
	d.pdf.Rect(marginLeft, top, clientBoxW, clientBoxH, "D")

	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.Text(marginLeft+clientBoxPad, top+6, "BILL TO")

	y := top + 12
	d.pdf.SetFont("Helvetica", "", 10)
	interior := clientBoxW - 2*clientBoxPad
	for _, line := range d.wrap(orDefault(draft.Client.Name, "Client"), interior) {
		if y > top+clientBoxH-3 {
			break
		}
		d.pdf.Text(marginLeft+clientBoxPad, y, d.tr(line))
		y += lineHeight
	}
	if draft.Client.Email != "" && y <= top+clientBoxH-3 {
		d.pdf.SetFont("Helvetica", "", 9)
		d.pdf.SetTextColor(90, 90, 90)
		d.pdf.Text(marginLeft+clientBoxPad, y, d.tr(draft.Client.Email))
	}

	// Right column: invoice identity and dates.
	rx := marginLeft + clientBoxW + 10
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.Text(rx, top+6, d.tr("Invoice #: "+invoiceNumber))
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.Text(rx, top+13, "Issue Date: "+formatDate(draft.IssueDate))
	d.pdf.Text(rx, top+20, "Due Date: "+formatDate(draft.DueDate))

	d.y = top + clientBoxH + 6
}

func (d *document) drawTableHeader() {
	d.pdf.SetFillColor(52, 73, 94)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.Rect(marginLeft, d.y, contentWidth, tableHeaderH, "F")

	titles := [4]string{"Description", "Qty", "Rate", "Amount"}
	x := marginLeft
	for i, title := range titles {
		if i == 0 {
			d.pdf.Text(x+tableCellPadX, d.y+5.5, title)
		} else {
			d.textRight(x+colWidths[i]-tableCellPadX, d.y+5.5, title)
		}
		x += colWidths[i]
	}
	d.headerPages = append(d.headerPages, d.pdf.PageNo())
	d.y += tableHeaderH
}

// drawItemTable renders the 4-column item table. Row height is driven by
// the tallest wrapped column. The page-break check happens before a row
// is drawn, so a row never straddles two pages.
func (d *document) drawItemTable(items []domain.LineItem) {
	d.drawTableHeader()

	for i, item := range items {
		d.pdf.SetFont("Helvetica", "", 9)
		descLines := d.wrap(item.Description, colWidths[0]-2*tableCellPadX)
		rateLines := d.wrap(d.formatMoney(item.UnitRate), colWidths[2]-2*tableCellPadX)
		amountLines := d.wrap(d.formatMoney(item.Amount()), colWidths[3]-2*tableCellPadX)

		n := maxInt(len(descLines), maxInt(len(rateLines), len(amountLines)))
		if n < 1 {
			n = 1
		}
		rowH := float64(n)*tableRowLineH + 2*tableCellPadY

		if d.y+rowH > bottomLimit {
			d.pdf.AddPage()
			d.y = marginTop
			d.drawTableHeader()
			d.pdf.SetFont("Helvetica", "", 9)
		}

		if i%2 == 1 {
			d.pdf.SetFillColor(245, 246, 248)
			d.pdf.Rect(marginLeft, d.y, contentWidth, rowH, "F")
		}

		d.rows = append(d.rows, rowPlacement{page: d.pdf.PageNo(), top: d.y, height: rowH})

		d.pdf.SetTextColor(33, 33, 33)
		baseline := d.y + tableCellPadY + tableRowLineH - 1
		for _, line := range descLines {
			d.pdf.Text(marginLeft+tableCellPadX, baseline, d.tr(line))
			baseline += tableRowLineH
		}

		qtyX := marginLeft + colWidths[0] + colWidths[1] - tableCellPadX
		d.textRight(qtyX, d.y+tableCellPadY+tableRowLineH-1, formatQuantity(item.Quantity))

		rateX := marginLeft + colWidths[0] + colWidths[1] + colWidths[2] - tableCellPadX
		baseline = d.y + tableCellPadY + tableRowLineH - 1
		for _, line := range rateLines {
			d.textRight(rateX, baseline, d.tr(line))
			baseline += tableRowLineH
		}

		amountX := marginLeft + contentWidth - tableCellPadX
		baseline = d.y + tableCellPadY + tableRowLineH - 1
		for _, line := range amountLines {
			d.textRight(amountX, baseline, d.tr(line))
			baseline += tableRowLineH
		}

		d.y += rowH
	}

	d.pdf.SetDrawColor(160, 160, 160)
	d.pdf.Line(marginLeft, d.y, pageWidth-marginRight, d.y)
	d.y += 4
}

// drawTotals renders the boxed subtotal/tax/total block right-aligned
// under the table, breaking to a new page as a unit if it does not fit.
func (d *document) drawTotals(t domain.Totals) {
	const boxH = 26.0
	d.ensureSpace(boxH + 4)

	x := marginLeft + contentWidth - totalsBoxW
	d.pdf.SetDrawColor(160, 160, 160)
	d.pdf.Rect(x, d.y, totalsBoxW, boxH, "D")

	rightX := x + totalsBoxW - 3
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.Text(x+3, d.y+7, "Subtotal:")
	d.textRight(rightX, d.y+7, d.tr(d.formatMoney(t.Subtotal)))

	taxLabel := "Tax (" + strconv.FormatFloat(t.TaxRate, 'f', -1, 64) + "%):"
	d.pdf.Text(x+3, d.y+14, taxLabel)
	d.textRight(rightX, d.y+14, d.tr(d.formatMoney(t.TaxAmount)))

	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.Text(x+3, d.y+22, "Total:")
	d.textRight(rightX, d.y+22, d.tr(d.formatMoney(t.Total)))

	d.y += boxH + 6
}

// drawBankDetails renders the optional bank block. It appears only when
// both bank name and account number are present; IFSC and account holder
// lines are added when available.
func (d *document) drawBankDetails(p *domain.BusinessProfile) {
	if !p.HasBankDetails() {
		return
	}

	lines := []string{
		"Bank: " + p.BankName,
		"A/C No: " + p.AccountNumber,
	}
	if p.IFSCCode != "" {
		lines = append(lines, "IFSC: "+p.IFSCCode)
	}
	if p.AccountHolderName != "" {
		lines = append(lines, "A/C Holder: "+p.AccountHolderName)
	}

	boxH := 9 + float64(len(lines))*lineHeight + 3
	d.ensureSpace(boxH + 4)

	d.pdf.SetDrawColor(160, 160, 160)
	d.pdf.Rect(marginLeft, d.y, contentWidth/2, boxH, "D")

	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetTextColor(33, 33, 33)
	d.pdf.Text(marginLeft+3, d.y+6, "Bank Details")

	d.pdf.SetFont("Helvetica", "", 9)
	y := d.y + 12
	for _, line := range lines {
		d.pdf.Text(marginLeft+3, y, d.tr(line))
		y += lineHeight
	}

	d.y += boxH + 4
}

// drawFooter renders the fixed footer near the bottom of the final page.
func (d *document) drawFooter(generatedAt time.Time) {
	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetTextColor(130, 130, 130)
	d.pdf.Text(marginLeft, footerY, "Thank you for your business!")
	stamp := "Generated on " + generatedAt.Format("02 Jan 2006 15:04")
	d.textRight(pageWidth-marginRight, footerY, stamp)
}

// textRight draws s ending at x using the current font.
func (d *document) textRight(x, y float64, s string) {
	d.pdf.Text(x-d.pdf.GetStringWidth(s), y, s)
}

func (d *document) formatMoney(v float64) string {
	return fmt.Sprintf("%s%.2f", d.symbol, v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
