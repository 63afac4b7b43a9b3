package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// lastFolio returns the highest folio with the prefix; longer folios sort
// after shorter ones so PED-2026-10000 follows PED-2026-9999.
func lastFolio(ctx context.Context, db *gorm.DB, model any, prefix string) (string, error) {
	var folios []string
	err := db.WithContext(ctx).Model(model).
		Where("folio LIKE ?", prefix+"%").
		Order("LENGTH(folio) DESC").Order("folio DESC").
		Limit(1).
		Pluck("folio", &folios).Error
	if err != nil || len(folios) == 0 {
		return "", err
	}
	return folios[0], nil
}

var quotationSpec = listSpec{
	search: []string{"folio", "client_name", "notes"},
	columns: map[string]string{
		"status":      "status",
		"contact_id":  "contact_id",
		"currency":    "currency",
		"valid_until": "valid_until",
		"created_at":  "created_at",
	},
	sortable: QuotationSortFields,
}

// GormQuotationRepository implements ventas.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation with its items
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ventas.Quotation, error) {
	var q ventas.Quotation
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&q, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "quotation")
	}
	return &q, nil
}

// FindByIDForUpdate locks the quotation header, then loads its items
func (r *GormQuotationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ventas.Quotation, error) {
	db := r.db.WithContext(ctx)
	var q ventas.Quotation
	if err := forUpdate(db).First(&q, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "quotation")
	}
	if err := orderedItems(db).Where("quotation_id = ?", id).Find(&q.Items).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// FindAll lists quotations without items
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ventas.Quotation, error) {
	var out []ventas.Quotation
	q := quotationSpec.where(r.db.WithContext(ctx).Model(&ventas.Quotation{}), filter)
	if err := quotationSpec.page(q, filter).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts quotations matching the filter
func (r *GormQuotationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := quotationSpec.where(r.db.WithContext(ctx).Model(&ventas.Quotation{}), filter).Count(&n).Error
	return n, err
}

// Create inserts the quotation and its items
func (r *GormQuotationRepository) Create(ctx context.Context, q *ventas.Quotation) error {
	return translateError(r.db.WithContext(ctx).Create(q).Error, "quotation")
}

// Update writes the header and replaces all items
func (r *GormQuotationRepository) Update(ctx context.Context, q *ventas.Quotation) error {
	db := r.db.WithContext(ctx)
	res := db.Model(q).Select("*").Omit("created_at", clause.Associations).Updates(q)
	if res.Error != nil {
		return translateError(res.Error, "quotation")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("quotation")
	}
	if err := db.Where("quotation_id = ?", q.ID).Delete(&ventas.QuotationItem{}).Error; err != nil {
		return err
	}
	if len(q.Items) == 0 {
		return nil
	}
	return translateError(db.Create(&q.Items).Error, "quotation item")
}

// Delete removes a quotation and its items
func (r *GormQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quotation_id = ?", id).Delete(&ventas.QuotationItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&ventas.Quotation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("quotation")
	}
	return nil
}

// LastFolio returns the highest folio with the prefix
func (r *GormQuotationRepository) LastFolio(ctx context.Context, prefix string) (string, error) {
	return lastFolio(ctx, r.db, &ventas.Quotation{}, prefix)
}

var pedidoSpec = listSpec{
	search: []string{"folio", "client_name", "notes"},
	columns: map[string]string{
		"status":        "status",
		"contact_id":    "contact_id",
		"quotation_id":  "quotation_id",
		"delivery_date": "delivery_date",
		"created_at":    "created_at",
	},
	sortable: PedidoSortFields,
}

// GormPedidoRepository implements ventas.PedidoRepository using GORM
type GormPedidoRepository struct {
	db *gorm.DB
}

// NewGormPedidoRepository creates a new GormPedidoRepository
func NewGormPedidoRepository(db *gorm.DB) *GormPedidoRepository {
	return &GormPedidoRepository{db: db}
}

// FindByID finds a pedido with its items
func (r *GormPedidoRepository) FindByID(ctx context.Context, id uuid.UUID) (*ventas.Pedido, error) {
	var p ventas.Pedido
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "pedido")
	}
	return &p, nil
}

// FindByIDForUpdate locks the pedido header, then loads its items
func (r *GormPedidoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ventas.Pedido, error) {
	db := r.db.WithContext(ctx)
	var p ventas.Pedido
	if err := forUpdate(db).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "pedido")
	}
	if err := orderedItems(db).Where("pedido_id = ?", id).Find(&p.Items).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAll lists pedidos without items
func (r *GormPedidoRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ventas.Pedido, error) {
	var out []ventas.Pedido
	q := pedidoSpec.where(r.db.WithContext(ctx).Model(&ventas.Pedido{}), filter)
	if err := pedidoSpec.page(q, filter).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts pedidos matching the filter
func (r *GormPedidoRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := pedidoSpec.where(r.db.WithContext(ctx).Model(&ventas.Pedido{}), filter).Count(&n).Error
	return n, err
}

// Create inserts the pedido and its items
func (r *GormPedidoRepository) Create(ctx context.Context, p *ventas.Pedido) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error, "pedido")
}

// Update writes the header, checking the version, and replaces all items
func (r *GormPedidoRepository) Update(ctx context.Context, p *ventas.Pedido) error {
	db := r.db.WithContext(ctx)
	err := saveVersioned(ctx, r.db, &ventas.Pedido{}, p.ID, p.Version, map[string]any{
		"client_name":   p.ClientName,
		"contact_id":    p.ContactID,
		"quotation_id":  p.QuotationID,
		"delivery_date": p.DeliveryDate,
		"notes":         p.Notes,
		"total":         p.Total,
		"updated_at":    p.UpdatedAt,
	}, "pedido")
	if err != nil {
		return err
	}
	if err := db.Where("pedido_id = ?", p.ID).Delete(&ventas.PedidoItem{}).Error; err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return nil
	}
	return translateError(db.Create(&p.Items).Error, "pedido item")
}

// SaveStatus writes the status fields, checking the version
func (r *GormPedidoRepository) SaveStatus(ctx context.Context, p *ventas.Pedido) error {
	return saveVersioned(ctx, r.db, &ventas.Pedido{}, p.ID, p.Version, map[string]any{
		"status":       p.Status,
		"confirmed_at": p.ConfirmedAt,
		"delivered_at": p.DeliveredAt,
		"cancelled_at": p.CancelledAt,
		"updated_at":   p.UpdatedAt,
	}, "pedido")
}

// Delete removes a pedido and its items
func (r *GormPedidoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("pedido_id = ?", id).Delete(&ventas.PedidoItem{}).Error; err != nil {
		return err
	}
	res := db.Delete(&ventas.Pedido{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("pedido")
	}
	return nil
}

// LastFolio returns the highest folio with the prefix
func (r *GormPedidoRepository) LastFolio(ctx context.Context, prefix string) (string, error) {
	return lastFolio(ctx, r.db, &ventas.Pedido{}, prefix)
}

var (
	_ ventas.QuotationRepository = (*GormQuotationRepository)(nil)
	_ ventas.PedidoRepository    = (*GormPedidoRepository)(nil)
)
