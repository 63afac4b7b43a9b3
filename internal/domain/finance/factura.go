package finance

import (
	"regexp"
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var rfcPattern = regexp.MustCompile(`^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)

// Factura is a CFDI tax invoice attached to a ledger entry
type Factura struct {
	shared.BaseEntity
	LedgerEntryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"ledger_entry_id"`
	FolioFiscal   string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"folio_fiscal"`
	RFCEmisor     string          `gorm:"column:rfc_emisor;type:varchar(13);not null" json:"rfc_emisor"`
	RFCReceptor   string          `gorm:"column:rfc_receptor;type:varchar(13);not null" json:"rfc_receptor"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	IssuedAt      *time.Time      `json:"issued_at,omitempty"`
	PDFURL        string          `gorm:"column:pdf_url;type:text" json:"pdf_url"`
	XMLURL        string          `gorm:"column:xml_url;type:text" json:"xml_url"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Factura) TableName() string {
	return "facturas"
}

// FacturaInput holds the invoice fields
type FacturaInput struct {
	FolioFiscal string
	RFCEmisor   string
	RFCReceptor string
	Total       decimal.Decimal
	IssuedAt    *time.Time
	PDFURL      string
	XMLURL      string
}

// NewFactura validates and creates a factura for a ledger entry
func NewFactura(entryID uuid.UUID, in FacturaInput, createdBy *uuid.UUID) (*Factura, error) {
	folio, err := uuid.Parse(strings.TrimSpace(in.FolioFiscal))
	if err != nil {
		return nil, shared.InvalidInput("folio_fiscal must be a UUID")
	}
	emisor := strings.ToUpper(strings.TrimSpace(in.RFCEmisor))
	receptor := strings.ToUpper(strings.TrimSpace(in.RFCReceptor))
	if !rfcPattern.MatchString(emisor) {
		return nil, shared.InvalidInput("invalid rfc_emisor %q", in.RFCEmisor)
	}
	if !rfcPattern.MatchString(receptor) {
		return nil, shared.InvalidInput("invalid rfc_receptor %q", in.RFCReceptor)
	}
	if in.Total.IsNegative() {
		return nil, shared.InvalidInput("total cannot be negative")
	}
	return &Factura{
		BaseEntity:    shared.NewBaseEntity(),
		LedgerEntryID: entryID,
		FolioFiscal:   strings.ToUpper(folio.String()),
		RFCEmisor:     emisor,
		RFCReceptor:   receptor,
		Total:         shared.RoundMoney(in.Total),
		IssuedAt:      in.IssuedAt,
		PDFURL:        in.PDFURL,
		XMLURL:        in.XMLURL,
		CreatedBy:     createdBy,
	}, nil
}
