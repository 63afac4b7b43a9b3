package finance

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a cotizacion
type MovementType string

const (
	MovementIngreso MovementType = "ingreso"
	MovementEgreso  MovementType = "egreso"
)

// IsValid checks if the movement type is known
func (m MovementType) IsValid() bool {
	return m == MovementIngreso || m == MovementEgreso
}

// Cotizacion is a cash movement entry, independent of the ledgers and of
// ventas quotations. Amount is always positive; MovementType gives direction.
type Cotizacion struct {
	shared.BaseEntity
	Date         time.Time       `gorm:"type:date;not null;index" json:"date"`
	Concept      string          `gorm:"type:varchar(255);not null" json:"concept"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null;check:chk_cotizacion_amount,amount > 0" json:"amount"`
	Currency     shared.Currency `gorm:"type:varchar(3);not null" json:"currency"`
	MovementType MovementType    `gorm:"type:varchar(10);not null" json:"movement_type"`
	Area         string          `gorm:"type:varchar(100)" json:"area"`
	Subarea      string          `gorm:"type:varchar(100)" json:"subarea"`
	Counterparty string          `gorm:"type:varchar(200)" json:"counterparty"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Cotizacion) TableName() string {
	return "cotizaciones"
}

// CotizacionInput holds the editable fields
type CotizacionInput struct {
	Date         time.Time
	Concept      string
	Amount       decimal.Decimal
	Currency     shared.Currency
	MovementType MovementType
	Area         string
	Subarea      string
	Counterparty string
	Notes        string
}

// NewCotizacion creates a cash movement entry
func NewCotizacion(in CotizacionInput, createdBy *uuid.UUID) (*Cotizacion, error) {
	c := &Cotizacion{BaseEntity: shared.NewBaseEntity(), CreatedBy: createdBy}
	if err := c.Update(in); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Cotizacion) Update(in CotizacionInput) error {
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return shared.InvalidInput("concept is required")
	}
	if in.Date.IsZero() {
		return shared.InvalidInput("date is required")
	}
	if !in.Amount.IsPositive() {
		return shared.InvalidInput("amount must be positive")
	}
	if !in.Currency.IsValid() {
		return shared.InvalidInput("currency must be USD or MXN")
	}
	if !in.MovementType.IsValid() {
		return shared.InvalidInput("movement_type must be ingreso or egreso")
	}
	c.Date = in.Date
	c.Concept = concept
	c.Amount = shared.RoundMoney(in.Amount)
	c.Currency = in.Currency
	c.MovementType = in.MovementType
	c.Area = strings.TrimSpace(in.Area)
	c.Subarea = strings.TrimSpace(in.Subarea)
	c.Counterparty = strings.TrimSpace(in.Counterparty)
	c.Notes = in.Notes
	c.Touch()
	return nil
}

// CotizacionTotal is one currency/direction bucket of the summary
type CotizacionTotal struct {
	Currency     shared.Currency `json:"currency"`
	MovementType MovementType    `json:"movement_type"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}
