package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var embalajeSpec = listSpec{
	search: []string{"producto", "color", "presentacion"},
	columns: map[string]string{
		"producto":     "producto_key",
		"color":        "color_key",
		"presentacion": "presentacion_key",
	},
	scopes: map[string]func(*gorm.DB, any) *gorm.DB{
		"low_stock": func(q *gorm.DB, v any) *gorm.DB {
			if !boolValue(v) {
				return q
			}
			return q.Where("min_quantity > 0 AND quantity < min_quantity")
		},
	},
	sortable:     EmbalajeSortFields,
	defaultOrder: "producto",
}

// GormEmbalajeRepository implements inventory.EmbalajeRepository using GORM
type GormEmbalajeRepository struct {
	*gormRepository[inventory.EmbalajeItem]
}

// NewGormEmbalajeRepository creates a new GormEmbalajeRepository
func NewGormEmbalajeRepository(db *gorm.DB) *GormEmbalajeRepository {
	return &GormEmbalajeRepository{newGormRepository[inventory.EmbalajeItem](db, "embalaje item", embalajeSpec)}
}

// FindByIDForUpdate loads and locks a row
func (r *GormEmbalajeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.EmbalajeItem, error) {
	var item inventory.EmbalajeItem
	if err := forUpdate(r.db.WithContext(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, r.resource)
	}
	return &item, nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormEmbalajeRepository) SaveWithLock(ctx context.Context, item *inventory.EmbalajeItem) error {
	return saveVersioned(ctx, r.db, &inventory.EmbalajeItem{}, item.ID, item.Version, map[string]any{
		"producto":         item.Producto,
		"color":            item.Color,
		"presentacion":     item.Presentacion,
		"producto_key":     item.ProductoKey,
		"color_key":        item.ColorKey,
		"presentacion_key": item.PresentacionKey,
		"quantity":         item.Quantity,
		"min_quantity":     item.MinQuantity,
		"notes":            item.Notes,
		"updated_at":       item.UpdatedAt,
	}, r.resource)
}

var _ inventory.EmbalajeRepository = (*GormEmbalajeRepository)(nil)

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create appends a movement
func (r *GormMovementRepository) Create(ctx context.Context, m *inventory.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

var movementSpec = listSpec{
	search:       []string{"notes"},
	columns:      map[string]string{"kind": "kind", "created_at": "created_at", "reference_type": "reference_type"},
	sortable:     MovementSortFields,
	defaultOrder: "created_at",
}

// FindByInventory returns one page of a row's history, newest first by default
func (r *GormMovementRepository) FindByInventory(ctx context.Context, inventoryType inventory.InventoryType, inventoryID uuid.UUID, filter shared.Filter) ([]inventory.Movement, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&inventory.Movement{}).
			Where("inventory_type = ? AND inventory_id = ?", inventoryType, inventoryID)
		return movementSpec.where(q, filter)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []inventory.Movement
	if err := movementSpec.page(base(), filter).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
