package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAllocationRepository implements inventory.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Allocation, error) {
	var a inventory.Allocation
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "allocation")
	}
	return &a, nil
}

// Create inserts an allocation; the inventory association is never written
func (r *GormAllocationRepository) Create(ctx context.Context, a *inventory.Allocation) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error, "allocation")
}

// Update writes quantity and status fields
func (r *GormAllocationRepository) Update(ctx context.Context, a *inventory.Allocation) error {
	res := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"quantity":    a.Quantity,
			"status":      a.Status,
			"consumed_at": a.ConsumedAt,
			"released_at": a.ReleasedAt,
			"updated_at":  a.UpdatedAt,
		})
	if res.Error != nil {
		return translateError(res.Error, "allocation")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("allocation")
	}
	return nil
}

// FindActiveByOwner lists active allocations of one owner line, oldest first
func (r *GormAllocationRepository) FindActiveByOwner(ctx context.Context, ownerType inventory.OwnerType, ownerID uuid.UUID) ([]inventory.Allocation, error) {
	var out []inventory.Allocation
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND status = ?", ownerType, ownerID, inventory.AllocationActive).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// FindActiveByInventory lists active allocations against an inventory row
func (r *GormAllocationRepository) FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) ([]inventory.Allocation, error) {
	var out []inventory.Allocation
	err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND status = ?", inventoryID, inventory.AllocationActive).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// FindByParent lists every allocation of a pedido or kit with its inventory row
func (r *GormAllocationRepository) FindByParent(ctx context.Context, ownerType inventory.OwnerType, parentID uuid.UUID) ([]inventory.Allocation, error) {
	var out []inventory.Allocation
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Where("owner_type = ? AND parent_id = ?", ownerType, parentID).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

type sumRow struct {
	ID    uuid.UUID
	Total int
}

// SumActiveByOwners sums active quantities per owner line
func (r *GormAllocationRepository) SumActiveByOwners(ctx context.Context, ownerType inventory.OwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	var rows []sumRow
	err := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Select("owner_id AS id, SUM(quantity) AS total").
		Where("owner_type = ? AND owner_id IN ? AND status = ?", ownerType, ownerIDs, inventory.AllocationActive).
		Group("owner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Total
	}
	return out, nil
}

// SumActiveByInventory sums active quantities per inventory row
func (r *GormAllocationRepository) SumActiveByInventory(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []sumRow
	err := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Select("inventory_id AS id, SUM(quantity) AS total").
		Where("status = ?", inventory.AllocationActive).
		Group("inventory_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Total
	}
	return out, nil
}

// SumActiveForInventory sums the active quantities held against one row
func (r *GormAllocationRepository) SumActiveForInventory(ctx context.Context, inventoryID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&inventory.Allocation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("inventory_id = ? AND status = ?", inventoryID, inventory.AllocationActive).
		Scan(&total).Error
	return total, err
}

var _ inventory.AllocationRepository = (*GormAllocationRepository)(nil)
