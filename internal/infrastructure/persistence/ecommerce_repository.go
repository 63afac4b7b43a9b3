package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func kitItemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("producto ASC").Order("color ASC")
}

var kitSpec = listSpec{
	search: []string{"sku", "name", "description"},
	columns: map[string]string{
		"active": "active",
	},
	scopes: map[string]func(*gorm.DB, any) *gorm.DB{
		"in_stock": func(db *gorm.DB, v any) *gorm.DB {
			if boolValue(v) {
				return db.Where("stock > 0")
			}
			return db.Where("stock = 0")
		},
	},
	sortable:     KitSortFields,
	defaultOrder: "name",
}

// GormKitRepository implements ecommerce.KitRepository using GORM
type GormKitRepository struct {
	db *gorm.DB
}

// NewGormKitRepository creates a new GormKitRepository
func NewGormKitRepository(db *gorm.DB) *GormKitRepository {
	return &GormKitRepository{db: db}
}

// FindByID finds a kit with its items
func (r *GormKitRepository) FindByID(ctx context.Context, id uuid.UUID) (*ecommerce.Kit, error) {
	var k ecommerce.Kit
	if err := r.db.WithContext(ctx).Preload("Items", kitItemOrder).First(&k, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "kit")
	}
	return &k, nil
}

// FindByIDForUpdate locks the kit row, then loads its items
func (r *GormKitRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ecommerce.Kit, error) {
	db := r.db.WithContext(ctx)
	var k ecommerce.Kit
	if err := forUpdate(db).First(&k, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "kit")
	}
	if err := kitItemOrder(db).Where("kit_id = ?", id).Find(&k.Items).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// FindAll lists kits with their items
func (r *GormKitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ecommerce.Kit, error) {
	var out []ecommerce.Kit
	q := kitSpec.where(r.db.WithContext(ctx).Model(&ecommerce.Kit{}).Preload("Items", kitItemOrder), filter)
	if err := kitSpec.page(q, filter).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts kits matching the filter
func (r *GormKitRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := kitSpec.where(r.db.WithContext(ctx).Model(&ecommerce.Kit{}), filter).Count(&n).Error
	return n, err
}

// Create inserts the kit and its items
func (r *GormKitRepository) Create(ctx context.Context, k *ecommerce.Kit) error {
	return translateError(r.db.WithContext(ctx).Create(k).Error, "kit")
}

// Update writes the kit header with a version check and optionally
// replaces its items
func (r *GormKitRepository) Update(ctx context.Context, k *ecommerce.Kit, replaceItems bool) error {
	err := saveVersioned(ctx, r.db, &ecommerce.Kit{}, k.ID, k.Version, map[string]any{
		"sku":         k.SKU,
		"name":        k.Name,
		"description": k.Description,
		"price":       k.Price,
		"stock":       k.Stock,
		"active":      k.Active,
		"updated_at":  k.UpdatedAt,
	}, "kit")
	if err != nil || !replaceItems {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("kit_id = ?", k.ID).Delete(&ecommerce.KitItem{}).Error; err != nil {
		return err
	}
	if len(k.Items) == 0 {
		return nil
	}
	return translateError(db.Create(&k.Items).Error, "kit item")
}

// Delete removes a kit and its items
func (r *GormKitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("kit_id = ?", id).Delete(&ecommerce.KitItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&ecommerce.Kit{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, "kit")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("kit")
	}
	return nil
}

var ecommercePedidoSpec = listSpec{
	search: []string{"external_order_id", "customer_name", "notes"},
	columns: map[string]string{
		"channel":    "channel",
		"status":     "status",
		"created_at": "created_at",
	},
	scopes: map[string]func(*gorm.DB, any) *gorm.DB{
		"kit_id": func(db *gorm.DB, v any) *gorm.DB {
			return db.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
				Model(&ecommerce.PedidoItem{}).Select("pedido_id").Where("kit_id = ?", v))
		},
	},
	sortable: EcommerceSortFields,
}

// GormEcommercePedidoRepository implements ecommerce.PedidoRepository using GORM
type GormEcommercePedidoRepository struct {
	db *gorm.DB
}

// NewGormEcommercePedidoRepository creates a new GormEcommercePedidoRepository
func NewGormEcommercePedidoRepository(db *gorm.DB) *GormEcommercePedidoRepository {
	return &GormEcommercePedidoRepository{db: db}
}

// FindByID finds a pedido with its items
func (r *GormEcommercePedidoRepository) FindByID(ctx context.Context, id uuid.UUID) (*ecommerce.Pedido, error) {
	var p ecommerce.Pedido
	if err := r.db.WithContext(ctx).Preload("Items").First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "ecommerce pedido")
	}
	return &p, nil
}

// FindByIDForUpdate locks the pedido row, then loads its items
func (r *GormEcommercePedidoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ecommerce.Pedido, error) {
	db := r.db.WithContext(ctx)
	var p ecommerce.Pedido
	if err := forUpdate(db).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "ecommerce pedido")
	}
	if err := db.Where("pedido_id = ?", id).Order("created_at").Find(&p.Items).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAll lists pedidos with their items
func (r *GormEcommercePedidoRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ecommerce.Pedido, error) {
	var out []ecommerce.Pedido
	q := ecommercePedidoSpec.where(r.db.WithContext(ctx).Model(&ecommerce.Pedido{}).Preload("Items"), filter)
	if err := ecommercePedidoSpec.page(q, filter).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts pedidos matching the filter
func (r *GormEcommercePedidoRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := ecommercePedidoSpec.where(r.db.WithContext(ctx).Model(&ecommerce.Pedido{}), filter).Count(&n).Error
	return n, err
}

// Create inserts the pedido and its items
func (r *GormEcommercePedidoRepository) Create(ctx context.Context, p *ecommerce.Pedido) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error, "ecommerce pedido")
}

// Save writes the header fields, checking the version
func (r *GormEcommercePedidoRepository) Save(ctx context.Context, p *ecommerce.Pedido) error {
	return saveVersioned(ctx, r.db, &ecommerce.Pedido{}, p.ID, p.Version, map[string]any{
		"customer_name":    p.CustomerName,
		"shipping_address": p.ShippingAddress,
		"notes":            p.Notes,
		"status":           p.Status,
		"shipped_at":       p.ShippedAt,
		"delivered_at":     p.DeliveredAt,
		"cancelled_at":     p.CancelledAt,
		"updated_at":       p.UpdatedAt,
	}, "ecommerce pedido")
}

// Delete removes a pedido and its items
func (r *GormEcommercePedidoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("pedido_id = ?", id).Delete(&ecommerce.PedidoItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&ecommerce.Pedido{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("ecommerce pedido")
	}
	return nil
}

// CountOpenByKit counts pending or shipped pedidos that include the kit
func (r *GormEcommercePedidoRepository) CountOpenByKit(ctx context.Context, kitID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ecommerce.Pedido{}).
		Joins("JOIN ecommerce_pedido_items ON ecommerce_pedido_items.pedido_id = ecommerce_pedidos.id").
		Where("ecommerce_pedido_items.kit_id = ?", kitID).
		Where("ecommerce_pedidos.status IN ?", []ecommerce.Status{ecommerce.StatusPending, ecommerce.StatusShipped}).
		Distinct("ecommerce_pedidos.id").
		Count(&n).Error
	return n, err
}

var (
	_ ecommerce.KitRepository    = (*GormKitRepository)(nil)
	_ ecommerce.PedidoRepository = (*GormEcommercePedidoRepository)(nil)
)
