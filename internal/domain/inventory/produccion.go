package inventory

import (
	"encoding/json"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProduccionItem is a production inventory row for one product, stage and color.
// Invariants: 0 <= Apartados <= Quantity, Vendidos >= 0, and Apartados equals
// the sum of active allocations pointing at the row.
type ProduccionItem struct {
	shared.VersionedEntity
	Producto    string     `gorm:"type:varchar(200);not null" json:"producto"`
	Etapa       string     `gorm:"type:varchar(100);not null" json:"etapa"`
	Color       string     `gorm:"type:varchar(100);not null" json:"color"`
	ProductoKey string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_produccion_key,priority:1" json:"-"`
	EtapaKey    string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_produccion_key,priority:2" json:"-"`
	ColorKey    string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_produccion_key,priority:3" json:"-"`
	Quantity    int        `gorm:"not null;default:0;check:chk_produccion_quantity,quantity >= 0" json:"quantity"`
	Apartados   int        `gorm:"not null;default:0;check:chk_produccion_apartados,apartados >= 0 AND apartados <= quantity" json:"apartados"`
	Vendidos    int        `gorm:"not null;default:0;check:chk_produccion_vendidos,vendidos >= 0" json:"vendidos"`
	MinQuantity int        `gorm:"not null;default:0" json:"min_quantity"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (ProduccionItem) TableName() string {
	return "produccion_inventory"
}

// NewProduccionItem creates a production row with an initial quantity
func NewProduccionItem(producto, etapa, color string, quantity, minQuantity int) (*ProduccionItem, error) {
	if quantity < 0 {
		return nil, shared.InvalidInput("quantity cannot be negative")
	}
	if minQuantity < 0 {
		return nil, shared.InvalidInput("min_quantity cannot be negative")
	}
	item := &ProduccionItem{
		VersionedEntity: shared.NewVersionedEntity(),
		Quantity:        quantity,
		MinQuantity:     minQuantity,
	}
	if err := item.Rename(producto, etapa, color); err != nil {
		return nil, err
	}
	return item, nil
}

// Rename sets the product, stage and color and their canonical keys
func (p *ProduccionItem) Rename(producto, etapa, color string) error {
	producto, etapa, color = strings.TrimSpace(producto), strings.TrimSpace(etapa), strings.TrimSpace(color)
	if producto == "" || etapa == "" || color == "" {
		return shared.InvalidInput("producto, etapa and color are required")
	}
	productoKey, colorKey := shared.CanonicalKey(producto), shared.CanonicalKey(color)
	if p.Apartados > 0 && (productoKey != p.ProductoKey || colorKey != p.ColorKey) {
		return shared.InvalidState("%d pieces are reserved; producto and color cannot change", p.Apartados)
	}
	p.Producto = producto
	p.Etapa = shared.CanonicalKey(etapa)
	p.Color = color
	p.ProductoKey = productoKey
	p.EtapaKey = shared.CanonicalKey(etapa)
	p.ColorKey = colorKey
	return nil
}

// Available returns the quantity that is neither reserved nor sold
func (p *ProduccionItem) Available() int {
	return p.Quantity - p.Apartados
}

// MarshalJSON adds the derived available quantity
func (p ProduccionItem) MarshalJSON() ([]byte, error) {
	type row ProduccionItem
	return json.Marshal(struct {
		row
		Available int `json:"available"`
	}{row(p), p.Available()})
}

// IsBelowMinimum reports whether availability dropped under the minimum
func (p *ProduccionItem) IsBelowMinimum() bool {
	return p.MinQuantity > 0 && p.Available() < p.MinQuantity
}

// Input adds produced pieces
func (p *ProduccionItem) Input(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	p.Quantity += n
	p.IncrementVersion()
	return nil
}

// Output removes unreserved pieces
func (p *ProduccionItem) Output(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	if n > p.Available() {
		return p.shortage(n)
	}
	p.Quantity -= n
	p.IncrementVersion()
	return nil
}

// Adjust sets the counted quantity and returns the applied delta.
// The new quantity may not drop below what is already reserved.
func (p *ProduccionItem) Adjust(quantity int) (int, error) {
	if quantity < 0 {
		return 0, shared.InvalidInput("quantity cannot be negative")
	}
	if quantity < p.Apartados {
		return 0, shared.InvalidState("cannot set quantity to %d: %d pieces are reserved", quantity, p.Apartados)
	}
	delta := quantity - p.Quantity
	p.Quantity = quantity
	p.IncrementVersion()
	return delta, nil
}

// Reserve moves n available pieces into apartados
func (p *ProduccionItem) Reserve(n int) error {
	if n <= 0 {
		return shared.InvalidInput("reserve quantity must be positive")
	}
	if n > p.Available() {
		return p.shortage(n)
	}
	p.Apartados += n
	p.IncrementVersion()
	return nil
}

// Release returns n reserved pieces to availability
func (p *ProduccionItem) Release(n int) error {
	if n <= 0 {
		return shared.InvalidInput("release quantity must be positive")
	}
	if n > p.Apartados {
		return shared.InvalidState("cannot release %d pieces, only %d reserved", n, p.Apartados)
	}
	p.Apartados -= n
	p.IncrementVersion()
	return nil
}

// Consume ships n reserved pieces: they leave quantity and apartados and
// are counted as vendidos.
func (p *ProduccionItem) Consume(n int) error {
	if n <= 0 {
		return shared.InvalidInput("consume quantity must be positive")
	}
	if n > p.Apartados {
		return shared.InvalidState("cannot consume %d pieces, only %d reserved", n, p.Apartados)
	}
	p.Quantity -= n
	p.Apartados -= n
	p.Vendidos += n
	p.IncrementVersion()
	return nil
}

// CanDelete returns an error while the row holds reservations
func (p *ProduccionItem) CanDelete() error {
	if p.Apartados > 0 {
		return shared.InvalidState("%d pieces are reserved against this row", p.Apartados)
	}
	return nil
}

func (p *ProduccionItem) shortage(requested int) error {
	return shared.InsufficientStock("only %d of %s %s (%s) available, %d requested",
		p.Available(), p.Producto, p.Color, p.Etapa, requested)
}

// stageRank orders stages for automatic allocation, most finished first.
var stageRank = map[string]int{
	"TERMINADO": 0,
	"ESMALTADO": 1,
	"DECORADO":  2,
	"BISCOCHO":  3,
	"CRUDO":     4,
}

// StageRank returns the allocation preference of a stage key; unknown
// stages sort after the known ones.
func StageRank(etapaKey string) int {
	if r, ok := stageRank[etapaKey]; ok {
		return r
	}
	return len(stageRank)
}
