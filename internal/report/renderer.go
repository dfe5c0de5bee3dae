package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer handles report template rendering.
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new template renderer.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatMoney":   FormatMoney,
		"formatPercent": FormatPercent,
		"formatDate":    formatDate,
		"formatHours":   func(h float64) string { return fmt.Sprintf("%.1fh", h) },
		"truncate":      truncate,
		"isNegative":    func(d decimal.Decimal) bool { return d.IsNegative() },
		"add":           func(a, b int) int { return a + b },
		"div": func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			return a / b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

// RenderSummary renders the summary report to HTML.
func (r *Renderer) RenderSummary(w io.Writer, report *SummaryReport) error {
	return r.templates.ExecuteTemplate(w, "summary.html", report)
}

// FormatMoney formats a decimal amount as currency with thousands separators.
// Negative amounts render in accounting parentheses.
func FormatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	formatted := "$" + strings.Join(groups, ",") + "." + decPart
	if negative {
		return "(" + formatted + ")"
	}
	return formatted
}

// FormatPercent formats a rate as a percentage with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

// truncate shortens a string with ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
