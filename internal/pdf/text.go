package pdf

import (
	"strconv"
	"strings"
	"time"
)

// wrap breaks s into lines no wider than w millimetres under the current
// font. Breaks happen only at token boundaries; a single token wider than
// w is kept whole on its own line rather than split mid-word.
func (d *document) wrap(s string, w float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if d.pdf.GetStringWidth(d.tr(candidate)) <= w {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// pdfCurrencySymbol maps a currency code to a symbol renderable with the
// cp1252 core fonts. The rupee sign has no cp1252 glyph, so INR falls
// back to "Rs.".
func pdfCurrencySymbol(code string) string {
	switch code {
	case "INR":
		return "Rs."
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}

// formatDate renders dates in the locale's short form.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// formatQuantity renders quantities without trailing zeros ("2", "1.5").
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
