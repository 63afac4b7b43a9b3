package inventory

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProduccionRepository persists produccion rows.
// The *ForUpdate finders lock the returned rows until the transaction ends.
type ProduccionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProduccionItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ProduccionItem, error)
	FindByKey(ctx context.Context, productoKey, etapaKey, colorKey string) (*ProduccionItem, error)
	FindMatchingForUpdate(ctx context.Context, productoKey, colorKey string) ([]ProduccionItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProduccionItem, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Availability(ctx context.Context, productoKey, colorKey string) ([]StageAvailability, error)
	Create(ctx context.Context, item *ProduccionItem) error
	// SaveWithLock writes the row if its stored version is item.Version-1.
	SaveWithLock(ctx context.Context, item *ProduccionItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StageAvailability aggregates one stage of a product/color
type StageAvailability struct {
	Etapa     string `json:"etapa"`
	Quantity  int    `json:"quantity"`
	Apartados int    `json:"apartados"`
	Available int    `json:"available"`
}

// EmbalajeRepository persists embalaje rows
type EmbalajeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EmbalajeItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*EmbalajeItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]EmbalajeItem, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, item *EmbalajeItem) error
	SaveWithLock(ctx context.Context, item *EmbalajeItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementRepository appends and lists movements
type MovementRepository interface {
	Create(ctx context.Context, m *Movement) error
	FindByInventory(ctx context.Context, inventoryType InventoryType, inventoryID uuid.UUID, filter shared.Filter) ([]Movement, int64, error)
}

// AllocationRepository persists allocation rows
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	Create(ctx context.Context, a *Allocation) error
	Update(ctx context.Context, a *Allocation) error
	FindActiveByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]Allocation, error)
	FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) ([]Allocation, error)
	// FindByParent lists allocations of every status for a pedido or kit, with inventory preloaded.
	FindByParent(ctx context.Context, ownerType OwnerType, parentID uuid.UUID) ([]Allocation, error)
	SumActiveByOwners(ctx context.Context, ownerType OwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID]int, error)
	SumActiveByInventory(ctx context.Context) (map[uuid.UUID]int, error)
	SumActiveForInventory(ctx context.Context, inventoryID uuid.UUID) (int, error)
}
