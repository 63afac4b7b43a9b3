package printing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const quotationTemplate = "quotation.html"

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#777;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// Company identifies the issuer printed on document headers
type Company struct {
	Name  string
	RFC   string
	Phone string
}

// QuotationPrinter renders ventas quotations as PDF documents
type QuotationPrinter struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	company  Company
	logger   *zap.Logger
}

// NewQuotationPrinter creates a printer that feeds the quotation template
// into renderer
func NewQuotationPrinter(renderer PDFRenderer, company Company, logger *zap.Logger) (*QuotationPrinter, error) {
	engine, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationPrinter{engine: engine, renderer: renderer, company: company, logger: logger}, nil
}

type quotationView struct {
	Company    Company
	Folio      string
	ClientName string
	IssuedAt   time.Time
	ValidUntil *time.Time
	Currency   shared.Currency
	Items      []quotationLineView
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Notes      string
}

type quotationLineView struct {
	Position    int
	Producto    string
	Color       string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// QuotationHTML renders the quotation document without converting it
func (p *QuotationPrinter) QuotationHTML(q *ventas.Quotation) (string, error) {
	return p.engine.Render(quotationTemplate, p.quotationView(q))
}

// RenderQuotation produces the PDF for q
func (p *QuotationPrinter) RenderQuotation(ctx context.Context, q *ventas.Quotation) ([]byte, error) {
	html, err := p.QuotationHTML(q)
	if err != nil {
		return nil, err
	}
	pdf, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      "Cotización " + q.Folio,
		FooterHTML: pageFooter,
	})
	if err != nil {
		p.logger.Error("failed to render quotation",
			zap.String("folio", q.Folio),
			zap.Error(err),
		)
		return nil, fmt.Errorf("render quotation %s: %w", q.Folio, err)
	}
	return pdf, nil
}

func (p *QuotationPrinter) quotationView(q *ventas.Quotation) quotationView {
	items := make([]ventas.QuotationItem, len(q.Items))
	copy(items, q.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	lines := make([]quotationLineView, 0, len(items))
	for i, it := range items {
		lines = append(lines, quotationLineView{
			Position:    i + 1,
			Producto:    it.Producto,
			Color:       it.Color,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}

	return quotationView{
		Company:    p.company,
		Folio:      q.Folio,
		ClientName: q.ClientName,
		IssuedAt:   q.CreatedAt,
		ValidUntil: q.ValidUntil,
		Currency:   q.Currency,
		Items:      lines,
		Subtotal:   q.Subtotal,
		TaxRate:    q.TaxRate,
		Tax:        q.Tax,
		Total:      q.Total,
		Notes:      q.Notes,
	}
}
