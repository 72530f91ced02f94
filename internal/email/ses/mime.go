package ses

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"mime/multipart"
	"net/textproto"
	"strings"

	"invogen/internal/port"
)

// buildInvoiceMIME assembles a multipart/mixed message: a text/html body
// followed by the invoice PDF as a base64 attachment. SES raw sending
// requires us to produce the full RFC 5322 message ourselves.
func buildInvoiceMIME(from string, input port.SendInvoiceInput, frontendURL string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	subject := fmt.Sprintf("Invoice %s from %s", input.InvoiceNumber, input.BusinessName)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", input.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	buf.WriteString("\r\n")

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", "text/html; charset=UTF-8")
	bodyPart, err := w.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("creating body part: %w", err)
	}
	if _, err := bodyPart.Write([]byte(invoiceBodyHTML(input, frontendURL))); err != nil {
		return nil, fmt.Errorf("writing body part: %w", err)
	}

	filename := input.Filename
	if filename == "" {
		filename = fmt.Sprintf("%s.pdf", input.InvoiceNumber)
	}
	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", "application/pdf")
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attPart, err := w.CreatePart(attHeader)
	if err != nil {
		return nil, fmt.Errorf("creating attachment part: %w", err)
	}
	if err := writeBase64Lines(attPart, input.PDF); err != nil {
		return nil, fmt.Errorf("writing attachment: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64Lines wraps base64 output at 76 characters per RFC 2045.
func writeBase64Lines(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n])); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// invoiceBodyHTML renders the message body. Names come from user input,
// so they are escaped before interpolation into the markup.
func invoiceBodyHTML(input port.SendInvoiceInput, frontendURL string) string {
	business := html.EscapeString(input.BusinessName)
	greeting := "Hello"
	if strings.TrimSpace(input.ClientName) != "" {
		greeting = fmt.Sprintf("Hello %s", html.EscapeString(input.ClientName))
	}
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">Invoice %s</h2>`, input.InvoiceNumber)
	fmt.Fprintf(&b, `<p>%s,</p>`, greeting)
	fmt.Fprintf(&b, `<p>Please find attached invoice <strong>%s</strong> from %s for <strong>%s</strong>.</p>`,
		input.InvoiceNumber, business, input.Total)
	b.WriteString(`<p>If you have any questions about this invoice, please reply to this email.</p>`)
	if frontendURL != "" {
		fmt.Fprintf(&b, `<p style="color: #888; font-size: 12px;">Sent via <a href="%s">%s</a></p>`, frontendURL, business)
	}
	b.WriteString(`</div>`)
	return b.String()
}
