package inventory

import (
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmbalajeItem is packed finished goods for one product, color and presentation
type EmbalajeItem struct {
	shared.VersionedEntity
	Producto        string     `gorm:"type:varchar(200);not null" json:"producto"`
	Color           string     `gorm:"type:varchar(100);not null" json:"color"`
	Presentacion    string     `gorm:"type:varchar(100);not null" json:"presentacion"`
	ProductoKey     string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_embalaje_key,priority:1" json:"-"`
	ColorKey        string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_embalaje_key,priority:2" json:"-"`
	PresentacionKey string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_embalaje_key,priority:3" json:"-"`
	Quantity        int        `gorm:"not null;default:0;check:chk_embalaje_quantity,quantity >= 0" json:"quantity"`
	MinQuantity     int        `gorm:"not null;default:0" json:"min_quantity"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (EmbalajeItem) TableName() string {
	return "embalaje_inventory"
}

// NewEmbalajeItem creates a packed-goods row
func NewEmbalajeItem(producto, color, presentacion string, quantity, minQuantity int) (*EmbalajeItem, error) {
	if quantity < 0 || minQuantity < 0 {
		return nil, shared.InvalidInput("quantities cannot be negative")
	}
	item := &EmbalajeItem{
		VersionedEntity: shared.NewVersionedEntity(),
		Quantity:        quantity,
		MinQuantity:     minQuantity,
	}
	if err := item.Rename(producto, color, presentacion); err != nil {
		return nil, err
	}
	return item, nil
}

// Rename sets the identifying names and their canonical keys
func (e *EmbalajeItem) Rename(producto, color, presentacion string) error {
	producto, color, presentacion = strings.TrimSpace(producto), strings.TrimSpace(color), strings.TrimSpace(presentacion)
	if producto == "" || color == "" || presentacion == "" {
		return shared.InvalidInput("producto, color and presentacion are required")
	}
	e.Producto = producto
	e.Color = color
	e.Presentacion = presentacion
	e.ProductoKey = shared.CanonicalKey(producto)
	e.ColorKey = shared.CanonicalKey(color)
	e.PresentacionKey = shared.CanonicalKey(presentacion)
	return nil
}

// Input adds packed pieces
func (e *EmbalajeItem) Input(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	e.Quantity += n
	e.IncrementVersion()
	return nil
}

// Output removes packed pieces
func (e *EmbalajeItem) Output(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	if n > e.Quantity {
		return shared.InsufficientStock("only %d packed %s %s available, %d requested",
			e.Quantity, e.Producto, e.Color, n)
	}
	e.Quantity -= n
	e.IncrementVersion()
	return nil
}

// Adjust sets the counted quantity and returns the delta
func (e *EmbalajeItem) Adjust(quantity int) (int, error) {
	if quantity < 0 {
		return 0, shared.InvalidInput("quantity cannot be negative")
	}
	delta := quantity - e.Quantity
	e.Quantity = quantity
	e.IncrementVersion()
	return delta, nil
}

// IsBelowMinimum reports whether stock is under the minimum
func (e *EmbalajeItem) IsBelowMinimum() bool {
	return e.MinQuantity > 0 && e.Quantity < e.MinQuantity
}
