package inventory

import (
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnerType identifies what an allocation is held for
type OwnerType string

const (
	OwnerPedidoItem OwnerType = "pedido_item"
	OwnerKitItem    OwnerType = "kit_item"
)

// IsValid checks if the owner type is known
func (o OwnerType) IsValid() bool {
	return o == OwnerPedidoItem || o == OwnerKitItem
}

// AllocationStatus is the lifecycle state of an allocation
type AllocationStatus string

const (
	AllocationActive   AllocationStatus = "active"
	AllocationConsumed AllocationStatus = "consumed"
	AllocationReleased AllocationStatus = "released"
)

// Owner is the line an allocation reserves stock for. ParentID is the
// pedido or kit the line belongs to.
type Owner struct {
	Type     OwnerType
	ID       uuid.UUID
	ParentID uuid.UUID
}

// Allocation reserves pieces of one produccion row for one owner line.
// Active allocations are counted in the row's apartados; consumed and
// released ones are history.
type Allocation struct {
	shared.BaseEntity
	InventoryID uuid.UUID        `gorm:"type:uuid;not null;index" json:"inventory_id"`
	OwnerType   OwnerType        `gorm:"type:varchar(30);not null;index:idx_allocation_owner,priority:1" json:"owner_type"`
	OwnerID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_allocation_owner,priority:2" json:"owner_id"`
	ParentID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"parent_id"`
	Quantity    int              `gorm:"not null;check:chk_allocation_quantity,quantity > 0" json:"quantity"`
	Status      AllocationStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ConsumedAt  *time.Time       `json:"consumed_at,omitempty"`
	ReleasedAt  *time.Time       `json:"released_at,omitempty"`
	CreatedBy   *uuid.UUID       `gorm:"type:uuid" json:"created_by,omitempty"`
	Inventory   *ProduccionItem  `gorm:"foreignKey:InventoryID" json:"inventory,omitempty"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// NewAllocation creates an active allocation
func NewAllocation(inventoryID uuid.UUID, owner Owner, quantity int) (*Allocation, error) {
	if !owner.Type.IsValid() {
		return nil, shared.InvalidInput("invalid allocation owner type %q", owner.Type)
	}
	if owner.ID == uuid.Nil || owner.ParentID == uuid.Nil {
		return nil, shared.InvalidInput("allocation owner is required")
	}
	if quantity <= 0 {
		return nil, shared.InvalidInput("allocation quantity must be positive")
	}
	return &Allocation{
		BaseEntity:  shared.NewBaseEntity(),
		InventoryID: inventoryID,
		OwnerType:   owner.Type,
		OwnerID:     owner.ID,
		ParentID:    owner.ParentID,
		Quantity:    quantity,
		Status:      AllocationActive,
	}, nil
}

// IsActive reports whether the allocation still holds stock
func (a *Allocation) IsActive() bool {
	return a.Status == AllocationActive
}

// Split detaches n pieces into a new active allocation for the same owner
// and inventory row, leaving Quantity-n on the receiver.
func (a *Allocation) Split(n int) (*Allocation, error) {
	if !a.IsActive() {
		return nil, shared.InvalidState("allocation is %s", a.Status)
	}
	if n <= 0 || n >= a.Quantity {
		return nil, shared.InvalidInput("split quantity must be between 1 and %d", a.Quantity-1)
	}
	part := &Allocation{
		BaseEntity:  shared.NewBaseEntity(),
		InventoryID: a.InventoryID,
		OwnerType:   a.OwnerType,
		OwnerID:     a.OwnerID,
		ParentID:    a.ParentID,
		Quantity:    n,
		Status:      AllocationActive,
		CreatedBy:   a.CreatedBy,
	}
	a.Quantity -= n
	a.Touch()
	return part, nil
}

// MarkConsumed closes the allocation as delivered
func (a *Allocation) MarkConsumed() error {
	if !a.IsActive() {
		return shared.InvalidState("allocation is already %s", a.Status)
	}
	now := time.Now()
	a.Status = AllocationConsumed
	a.ConsumedAt = &now
	a.UpdatedAt = now
	return nil
}

// MarkReleased closes the allocation and gives the stock back
func (a *Allocation) MarkReleased() error {
	if !a.IsActive() {
		return shared.InvalidState("allocation is already %s", a.Status)
	}
	now := time.Now()
	a.Status = AllocationReleased
	a.ReleasedAt = &now
	a.UpdatedAt = now
	return nil
}
