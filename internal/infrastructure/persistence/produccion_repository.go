package persistence

import (
	"context"
	"sort"

	"github.com/ceramica/backend/internal/domain/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var produccionSpec = listSpec{
	search: []string{"producto", "etapa", "color", "notes"},
	columns: map[string]string{
		"producto": "producto_key",
		"etapa":    "etapa_key",
		"color":    "color_key",
	},
	scopes: map[string]func(*gorm.DB, any) *gorm.DB{
		"low_stock": func(q *gorm.DB, v any) *gorm.DB {
			if !boolValue(v) {
				return q
			}
			return q.Where("min_quantity > 0 AND quantity - apartados < min_quantity")
		},
	},
	sortable:     ProduccionSortFields,
	defaultOrder: "producto",
}

// GormProduccionRepository implements inventory.ProduccionRepository using GORM
type GormProduccionRepository struct {
	db *gorm.DB
}

// NewGormProduccionRepository creates a new GormProduccionRepository
func NewGormProduccionRepository(db *gorm.DB) *GormProduccionRepository {
	return &GormProduccionRepository{db: db}
}

// FindByID finds a produccion row by its ID
func (r *GormProduccionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProduccionItem, error) {
	var item inventory.ProduccionItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "produccion item")
	}
	return &item, nil
}

// FindByIDForUpdate loads and locks a row until the transaction ends
func (r *GormProduccionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.ProduccionItem, error) {
	var item inventory.ProduccionItem
	if err := forUpdate(r.db.WithContext(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "produccion item")
	}
	return &item, nil
}

// FindByKey finds the row for a canonical product, stage and color
func (r *GormProduccionRepository) FindByKey(ctx context.Context, productoKey, etapaKey, colorKey string) (*inventory.ProduccionItem, error) {
	var item inventory.ProduccionItem
	err := r.db.WithContext(ctx).
		Where("producto_key = ? AND etapa_key = ? AND color_key = ?", productoKey, etapaKey, colorKey).
		First(&item).Error
	if err != nil {
		return nil, translateError(err, "produccion item")
	}
	return &item, nil
}

// FindMatchingForUpdate locks every stage row of a product/color and returns
// them in allocation order: stage preference, then id.
func (r *GormProduccionRepository) FindMatchingForUpdate(ctx context.Context, productoKey, colorKey string) ([]inventory.ProduccionItem, error) {
	var items []inventory.ProduccionItem
	err := forUpdate(r.db.WithContext(ctx)).
		Where("producto_key = ? AND color_key = ?", productoKey, colorKey).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return inventory.StageRank(items[i].EtapaKey) < inventory.StageRank(items[j].EtapaKey)
	})
	return items, nil
}

// FindAll lists rows matching the filter
func (r *GormProduccionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.ProduccionItem, error) {
	var items []inventory.ProduccionItem
	q := r.db.WithContext(ctx).Model(&inventory.ProduccionItem{})
	if err := produccionSpec.page(produccionSpec.where(q, filter), filter).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts rows matching the filter
func (r *GormProduccionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&inventory.ProduccionItem{})
	if err := produccionSpec.where(q, filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Availability sums each stage of a product/color
func (r *GormProduccionRepository) Availability(ctx context.Context, productoKey, colorKey string) ([]inventory.StageAvailability, error) {
	var rows []inventory.StageAvailability
	err := r.db.WithContext(ctx).Model(&inventory.ProduccionItem{}).
		Select("etapa, SUM(quantity) AS quantity, SUM(apartados) AS apartados, SUM(quantity - apartados) AS available").
		Where("producto_key = ? AND color_key = ?", productoKey, colorKey).
		Group("etapa").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := inventory.StageRank(rows[i].Etapa), inventory.StageRank(rows[j].Etapa)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Etapa < rows[j].Etapa
	})
	return rows, nil
}

// Create inserts a new row
func (r *GormProduccionRepository) Create(ctx context.Context, item *inventory.ProduccionItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error, "produccion item")
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormProduccionRepository) SaveWithLock(ctx context.Context, item *inventory.ProduccionItem) error {
	return saveVersioned(ctx, r.db, &inventory.ProduccionItem{}, item.ID, item.Version, map[string]any{
		"producto":     item.Producto,
		"etapa":        item.Etapa,
		"color":        item.Color,
		"producto_key": item.ProductoKey,
		"etapa_key":    item.EtapaKey,
		"color_key":    item.ColorKey,
		"quantity":     item.Quantity,
		"apartados":    item.Apartados,
		"vendidos":     item.Vendidos,
		"min_quantity": item.MinQuantity,
		"notes":        item.Notes,
		"updated_at":   item.UpdatedAt,
	}, "produccion item")
}

// Delete removes a row
func (r *GormProduccionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&inventory.ProduccionItem{}, "id = ?", id)
	if isForeignKeyViolation(res.Error) {
		return shared.InvalidState("produccion item has allocation history and cannot be deleted")
	}
	if res.Error != nil {
		return translateError(res.Error, "produccion item")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("produccion item")
	}
	return nil
}

var _ inventory.ProduccionRepository = (*GormProduccionRepository)(nil)
