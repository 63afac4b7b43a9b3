package ecommerce

import (
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kit is a bundle of produccion products sold online. Stock counts
// assembled kits; every unit of stock holds quantity_per_kit pieces of each
// item reserved in produccion.
type Kit struct {
	shared.VersionedEntity
	SKU         string          `gorm:"column:sku;type:varchar(60);not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:chk_kit_stock,stock >= 0" json:"stock"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	Items       []KitItem       `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (Kit) TableName() string {
	return "ecommerce_kits"
}

// KitItem is one component of a kit
type KitItem struct {
	shared.BaseEntity
	KitID          uuid.UUID `gorm:"type:uuid;not null;index" json:"kit_id"`
	Producto       string    `gorm:"type:varchar(200);not null" json:"producto"`
	Color          string    `gorm:"type:varchar(100);not null" json:"color"`
	ProductoKey    string    `gorm:"type:varchar(200);not null" json:"-"`
	ColorKey       string    `gorm:"type:varchar(100);not null" json:"-"`
	QuantityPerKit int       `gorm:"not null;check:chk_kit_item_quantity,quantity_per_kit > 0" json:"quantity_per_kit"`
}

// TableName returns the table name for GORM
func (KitItem) TableName() string {
	return "ecommerce_kit_items"
}

// KitItemInput describes one component
type KitItemInput struct {
	Producto       string
	Color          string
	QuantityPerKit int
}

// KitInput holds the editable kit fields
type KitInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
}

// NewKit creates a kit with no stock
func NewKit(in KitInput, items []KitItemInput) (*Kit, error) {
	k := &Kit{VersionedEntity: shared.NewVersionedEntity()}
	if err := k.apply(in); err != nil {
		return nil, err
	}
	if err := k.setItems(items); err != nil {
		return nil, err
	}
	return k, nil
}

// Revise changes the header and, when items is not nil, the component list
// in one version step.
func (k *Kit) Revise(in KitInput, items []KitItemInput) error {
	if items != nil && k.Stock != 0 {
		return shared.InvalidState("kit %s has %d units in stock, items cannot change", k.SKU, k.Stock)
	}
	if err := k.apply(in); err != nil {
		return err
	}
	if items != nil {
		if err := k.setItems(items); err != nil {
			return err
		}
	}
	k.IncrementVersion()
	return nil
}

func (k *Kit) apply(in KitInput) error {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return shared.InvalidInput("sku and name are required")
	}
	if in.Price.IsNegative() {
		return shared.InvalidInput("price cannot be negative")
	}
	k.SKU = sku
	k.Name = name
	k.Description = in.Description
	k.Price = in.Price
	k.Active = in.Active
	return nil
}

func (k *Kit) setItems(items []KitItemInput) error {
	if len(items) == 0 {
		return shared.InvalidInput("a kit needs at least one item")
	}
	seen := make(map[string]bool, len(items))
	out := make([]KitItem, 0, len(items))
	for i, in := range items {
		producto, color := strings.TrimSpace(in.Producto), strings.TrimSpace(in.Color)
		if producto == "" || color == "" {
			return shared.InvalidInput("item %d: producto and color are required", i+1)
		}
		if in.QuantityPerKit <= 0 {
			return shared.InvalidInput("item %d: quantity_per_kit must be positive", i+1)
		}
		key := shared.CanonicalKey(producto) + "|" + shared.CanonicalKey(color)
		if seen[key] {
			return shared.InvalidInput("item %d: %s %s is listed twice", i+1, producto, color)
		}
		seen[key] = true
		out = append(out, KitItem{
			BaseEntity:     shared.NewBaseEntity(),
			KitID:          k.ID,
			Producto:       producto,
			Color:          color,
			ProductoKey:    shared.CanonicalKey(producto),
			ColorKey:       shared.CanonicalKey(color),
			QuantityPerKit: in.QuantityPerKit,
		})
	}
	k.Items = out
	return nil
}

// AdjustStock changes assembled stock by delta
func (k *Kit) AdjustStock(delta int) error {
	if delta == 0 {
		return shared.InvalidInput("delta cannot be zero")
	}
	if k.Stock+delta < 0 {
		return shared.InsufficientStock("kit %s has %d units, cannot remove %d", k.SKU, k.Stock, -delta)
	}
	k.Stock += delta
	k.IncrementVersion()
	return nil
}

// Take removes sold kits from stock
func (k *Kit) Take(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	if !k.Active {
		return shared.InvalidState("kit %s is not active", k.SKU)
	}
	if n > k.Stock {
		return shared.InsufficientStock("kit %s has %d units, %d requested", k.SKU, k.Stock, n)
	}
	k.Stock -= n
	k.IncrementVersion()
	return nil
}

// Restore puts kits from a cancelled order back into stock
func (k *Kit) Restore(n int) error {
	if n <= 0 {
		return shared.InvalidInput("quantity must be positive")
	}
	k.Stock += n
	k.IncrementVersion()
	return nil
}

// CanDelete returns an error while kits are assembled
func (k *Kit) CanDelete() error {
	if k.Stock != 0 {
		return shared.InvalidState("kit %s still has %d units in stock", k.SKU, k.Stock)
	}
	return nil
}
