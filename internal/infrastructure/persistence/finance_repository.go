package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ledgerSpec = listSpec{
	search: []string{"description", "reference", "category"},
	columns: map[string]string{
		"date":         "date",
		"entry_type":   "entry_type",
		"bank_account": "bank_account",
		"area":         "area",
		"subarea":      "subarea",
		"category":     "category",
	},
	sortable:     LedgerSortFields,
	defaultOrder: "date",
}

// GormLedgerRepository implements finance.LedgerRepository using GORM.
// Both books share the ledger_entries table, discriminated by currency.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) book(ctx context.Context, currency shared.Currency) *gorm.DB {
	return r.db.WithContext(ctx).Model(&finance.LedgerEntry{}).Where("currency = ?", currency)
}

// FindByID finds an entry of the given book
func (r *GormLedgerRepository) FindByID(ctx context.Context, currency shared.Currency, id uuid.UUID) (*finance.LedgerEntry, error) {
	var e finance.LedgerEntry
	if err := r.book(ctx, currency).First(&e, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "ledger entry")
	}
	return &e, nil
}

// FindAll lists entries of the given book
func (r *GormLedgerRepository) FindAll(ctx context.Context, currency shared.Currency, filter shared.Filter) ([]finance.LedgerEntry, error) {
	var out []finance.LedgerEntry
	q := ledgerSpec.page(ledgerSpec.where(r.book(ctx, currency), filter), filter)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts entries of the given book matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, currency shared.Currency, filter shared.Filter) (int64, error) {
	var n int64
	err := ledgerSpec.where(r.book(ctx, currency), filter).Count(&n).Error
	return n, err
}

// Summary totals income, expense and balance per bank account
func (r *GormLedgerRepository) Summary(ctx context.Context, currency shared.Currency, filter shared.Filter) ([]finance.BankBalance, error) {
	var out []finance.BankBalance
	err := ledgerSpec.where(r.book(ctx, currency), filter).
		Select(`COALESCE(bank_account, '') AS bank_account,
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS expense,
			COALESCE(SUM(amount), 0) AS balance`).
		Group("bank_account").
		Order("bank_account").
		Scan(&out).Error
	return out, err
}

// Create inserts an entry
func (r *GormLedgerRepository) Create(ctx context.Context, e *finance.LedgerEntry) error {
	return translateError(r.db.WithContext(ctx).Create(e).Error, "ledger entry")
}

// Update writes every column of an entry within its own book
func (r *GormLedgerRepository) Update(ctx context.Context, e *finance.LedgerEntry) error {
	res := r.db.WithContext(ctx).Model(e).
		Where("currency = ?", e.Currency).
		Select("*").Omit("created_at", clause.Associations).
		Updates(e)
	if res.Error != nil {
		return translateError(res.Error, "ledger entry")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("ledger entry")
	}
	return nil
}

// Delete removes an entry of the given book
func (r *GormLedgerRepository) Delete(ctx context.Context, currency shared.Currency, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("currency = ?", currency).Delete(&finance.LedgerEntry{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, "ledger entry")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("ledger entry")
	}
	return nil
}

// GormFacturaRepository implements finance.FacturaRepository using GORM
type GormFacturaRepository struct {
	db *gorm.DB
}

// NewGormFacturaRepository creates a new GormFacturaRepository
func NewGormFacturaRepository(db *gorm.DB) *GormFacturaRepository {
	return &GormFacturaRepository{db: db}
}

// FindByEntry lists the facturas of a ledger entry
func (r *GormFacturaRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]finance.Factura, error) {
	var out []finance.Factura
	err := r.db.WithContext(ctx).
		Where("ledger_entry_id = ?", entryID).
		Order("created_at ASC").Order("id").
		Find(&out).Error
	return out, err
}

// FindForEntry loads one factura when it belongs to the entry
func (r *GormFacturaRepository) FindForEntry(ctx context.Context, entryID, id uuid.UUID) (*finance.Factura, error) {
	var f finance.Factura
	if err := r.db.WithContext(ctx).First(&f, "id = ? AND ledger_entry_id = ?", id, entryID).Error; err != nil {
		return nil, translateError(err, "factura")
	}
	return &f, nil
}

// Create inserts a factura; a repeated folio fiscal is a conflict
func (r *GormFacturaRepository) Create(ctx context.Context, f *finance.Factura) error {
	return translateError(r.db.WithContext(ctx).Create(f).Error, "factura")
}

// Delete removes one factura
func (r *GormFacturaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&finance.Factura{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("factura")
	}
	return nil
}

// DeleteByEntry removes every factura of a ledger entry
func (r *GormFacturaRepository) DeleteByEntry(ctx context.Context, entryID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("ledger_entry_id = ?", entryID).Delete(&finance.Factura{}).Error
}

var cotizacionSpec = listSpec{
	search: []string{"concept", "counterparty", "notes"},
	columns: map[string]string{
		"date":          "date",
		"currency":      "currency",
		"movement_type": "movement_type",
		"area":          "area",
		"subarea":       "subarea",
	},
	sortable:     CotizacionSortFields,
	defaultOrder: "date",
}

// GormCotizacionRepository implements finance.CotizacionRepository using GORM
type GormCotizacionRepository struct {
	*gormRepository[finance.Cotizacion]
}

// NewGormCotizacionRepository creates a new GormCotizacionRepository
func NewGormCotizacionRepository(db *gorm.DB) *GormCotizacionRepository {
	return &GormCotizacionRepository{gormRepository: newGormRepository[finance.Cotizacion](db, "cotizacion", cotizacionSpec)}
}

// Summary totals cotizaciones per currency and movement type
func (r *GormCotizacionRepository) Summary(ctx context.Context, filter shared.Filter) ([]finance.CotizacionTotal, error) {
	var out []finance.CotizacionTotal
	err := cotizacionSpec.where(r.db.WithContext(ctx).Model(&finance.Cotizacion{}), filter).
		Select("currency, movement_type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("currency").Group("movement_type").
		Order("currency").Order("movement_type").
		Scan(&out).Error
	return out, err
}

var (
	_ finance.LedgerRepository     = (*GormLedgerRepository)(nil)
	_ finance.FacturaRepository    = (*GormFacturaRepository)(nil)
	_ finance.CotizacionRepository = (*GormCotizacionRepository)(nil)
)
