package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("documents").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse document templates: %w", err)
	}
	return &TemplateEngine{templates: tmpl}, nil
}

// Render executes the named template with data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":   formatMoney,
		"date":    formatDate,
		"title":   titleCase,
		"percent": formatPercent,
	}
}

// titleCase capitalizes each word using Spanish casing rules. cases.Caser
// is stateful, so a new one is built per call.
func titleCase(s string) string {
	return cases.Title(language.LatinAmericanSpanish).String(strings.TrimSpace(s))
}

// formatMoney renders an amount as $1,234.50
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatPercent renders a rate such as 0.16 as 16%
func formatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).Round(2).String() + "%"
}

// formatDate renders dd/mm/yyyy, the format used on Mexican documents
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	default:
		return ""
	}
}
