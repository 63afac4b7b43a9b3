package inventory

import (
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryType distinguishes the two inventories sharing the movement log
type InventoryType string

const (
	InventoryProduccion InventoryType = "produccion"
	InventoryEmbalaje   InventoryType = "embalaje"
)

// MovementKind classifies a quantity change
type MovementKind string

const (
	MovementInput       MovementKind = "input"
	MovementOutput      MovementKind = "output"
	MovementAdjust      MovementKind = "adjust"
	MovementTransferIn  MovementKind = "transfer_in"
	MovementTransferOut MovementKind = "transfer_out"
	MovementReserve     MovementKind = "reserve"
	MovementRelease     MovementKind = "release"
	MovementConsume     MovementKind = "consume"
)

// Reference points a movement at the document that caused it
type Reference struct {
	Type string
	ID   *uuid.UUID
}

// Movement is an append-only record of one inventory change
type Movement struct {
	shared.BaseEntity
	InventoryType  InventoryType `gorm:"type:varchar(20);not null;index:idx_movement_inventory,priority:1" json:"inventory_type"`
	InventoryID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_movement_inventory,priority:2" json:"inventory_id"`
	Kind           MovementKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Delta          int           `gorm:"not null" json:"delta"`
	QuantityAfter  int           `gorm:"not null" json:"quantity_after"`
	ApartadosAfter int           `gorm:"not null;default:0" json:"apartados_after"`
	ReferenceType  string        `gorm:"type:varchar(30)" json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID    `gorm:"type:uuid" json:"reference_id,omitempty"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy      *uuid.UUID    `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "inventory_movements"
}

// NewProduccionMovement records a change on a produccion row after it was applied
func NewProduccionMovement(item *ProduccionItem, kind MovementKind, delta int, ref Reference, notes string, by *uuid.UUID) *Movement {
	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		InventoryType:  InventoryProduccion,
		InventoryID:    item.ID,
		Kind:           kind,
		Delta:          delta,
		QuantityAfter:  item.Quantity,
		ApartadosAfter: item.Apartados,
		ReferenceType:  ref.Type,
		ReferenceID:    ref.ID,
		Notes:          notes,
		CreatedBy:      by,
	}
}

// NewEmbalajeMovement records a change on an embalaje row after it was applied
func NewEmbalajeMovement(item *EmbalajeItem, kind MovementKind, delta int, ref Reference, notes string, by *uuid.UUID) *Movement {
	return &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		InventoryType: InventoryEmbalaje,
		InventoryID:   item.ID,
		Kind:          kind,
		Delta:         delta,
		QuantityAfter: item.Quantity,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		Notes:         notes,
		CreatedBy:     by,
	}
}
