package ventas

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationFolioPrefix prefixes quotation folios
const QuotationFolioPrefix = "COT"

// QuotationStatus represents the status of a quotation
type QuotationStatus string

const (
	QuotationDraft     QuotationStatus = "draft"
	QuotationSent      QuotationStatus = "sent"
	QuotationAccepted  QuotationStatus = "accepted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationExpired   QuotationStatus = "expired"
	QuotationConverted QuotationStatus = "converted"
)

// IsValid checks if the status is a valid QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired, QuotationConverted:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can move to target through PATCH /status.
// Conversion has its own operation.
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	switch s {
	case QuotationDraft:
		return target == QuotationSent
	case QuotationSent:
		return target == QuotationAccepted || target == QuotationRejected || target == QuotationExpired
	}
	return false
}

// Quotation is a price offer to a client
type Quotation struct {
	shared.BaseEntity
	Folio      string          `gorm:"type:varchar(20);not null;uniqueIndex" json:"folio"`
	ClientName string          `gorm:"type:varchar(200);not null" json:"client_name"`
	ContactID  *uuid.UUID      `gorm:"type:uuid" json:"contact_id,omitempty"`
	Status     QuotationStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	Currency   shared.Currency `gorm:"type:varchar(3);not null;default:'MXN'" json:"currency"`
	Notes      string          `gorm:"type:text" json:"notes"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"subtotal"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"`
	Tax        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"tax"`
	Total      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total"`
	PedidoID   *uuid.UUID      `gorm:"type:uuid" json:"pedido_id,omitempty"`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	Items      []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (Quotation) TableName() string {
	return "quotations"
}

// QuotationItem is one line of a quotation
type QuotationItem struct {
	shared.BaseEntity
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"quotation_id"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Producto    string          `gorm:"type:varchar(200);not null" json:"producto"`
	Color       string          `gorm:"type:varchar(100);not null" json:"color"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    int             `gorm:"not null;check:chk_quotation_item_quantity,quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

// TableName returns the table name for GORM
func (QuotationItem) TableName() string {
	return "quotation_items"
}

// QuotationInput holds the editable header fields
type QuotationInput struct {
	ClientName string
	ContactID  *uuid.UUID
	ValidUntil *time.Time
	Currency   shared.Currency
	TaxRate    decimal.Decimal
	Notes      string
	Items      []LineInput
}

// NewQuotation creates a draft quotation
func NewQuotation(folio string, in QuotationInput) (*Quotation, error) {
	q := &Quotation{
		BaseEntity: shared.NewBaseEntity(),
		Folio:      folio,
		Status:     QuotationDraft,
	}
	if err := q.apply(in); err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces header and lines; allowed in draft and sent
func (q *Quotation) Update(in QuotationInput) error {
	if !q.IsEditable() {
		return shared.InvalidState("quotation %s is %s and can no longer be edited", q.Folio, q.Status)
	}
	if err := q.apply(in); err != nil {
		return err
	}
	q.Touch()
	return nil
}

func (q *Quotation) apply(in QuotationInput) error {
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		return shared.InvalidInput("client_name is required")
	}
	if in.Currency == "" {
		in.Currency = shared.CurrencyMXN
	}
	if !in.Currency.IsValid() {
		return shared.InvalidInput("unsupported currency %q", in.Currency)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.InvalidInput("tax_rate must be between 0 and 1")
	}
	lines, err := validateLines(in.Items)
	if err != nil {
		return err
	}
	q.ClientName = client
	q.ContactID = in.ContactID
	q.ValidUntil = in.ValidUntil
	q.Currency = in.Currency
	q.TaxRate = in.TaxRate
	q.Notes = in.Notes
	q.Items = make([]QuotationItem, len(lines))
	for i, l := range lines {
		q.Items[i] = QuotationItem{
			BaseEntity:  shared.NewBaseEntity(),
			QuotationID: q.ID,
			Position:    i + 1,
			Producto:    l.Producto,
			Color:       l.Color,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   shared.LineTotal(l.Quantity, l.UnitPrice),
		}
	}
	q.recalculate()
	return nil
}

func (q *Quotation) recalculate() {
	subtotal := decimal.Zero
	for _, it := range q.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	q.Subtotal = subtotal
	q.Tax = shared.RoundMoney(subtotal.Mul(q.TaxRate))
	q.Total = q.Subtotal.Add(q.Tax)
}

// IsEditable reports whether lines and header may still change
func (q *Quotation) IsEditable() bool {
	return q.Status == QuotationDraft || q.Status == QuotationSent
}

// TransitionTo moves the quotation along draft → sent → accepted|rejected|expired
func (q *Quotation) TransitionTo(target QuotationStatus) error {
	if !target.IsValid() {
		return shared.InvalidInput("invalid quotation status %q", target)
	}
	if !q.Status.CanTransitionTo(target) {
		return shared.InvalidState("cannot change quotation from %s to %s", q.Status, target)
	}
	q.Status = target
	q.Touch()
	return nil
}

// MarkConverted links the quotation to the pedido created from it
func (q *Quotation) MarkConverted(pedidoID uuid.UUID) error {
	if q.Status != QuotationAccepted {
		return shared.InvalidState("only accepted quotations can be converted, quotation is %s", q.Status)
	}
	q.Status = QuotationConverted
	q.PedidoID = &pedidoID
	q.Touch()
	return nil
}

// Lines returns the quotation items as pedido line inputs
func (q *Quotation) Lines() []LineInput {
	lines := make([]LineInput, len(q.Items))
	for i, it := range q.Items {
		lines[i] = LineInput{
			Producto:    it.Producto,
			Color:       it.Color,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return lines
}
