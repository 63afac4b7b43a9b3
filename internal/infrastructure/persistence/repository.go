package persistence

import (
	"context"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements the CRUD half of shared.Repository for one entity
type gormRepository[T any] struct {
	db       *gorm.DB
	resource string
	spec     listSpec
	preload  []string
}

func newGormRepository[T any](db *gorm.DB, resource string, spec listSpec, preload ...string) *gormRepository[T] {
	return &gormRepository[T]{db: db, resource: resource, spec: spec, preload: preload}
}

func (r *gormRepository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	for _, p := range r.preload {
		q = q.Preload(p)
	}
	return q
}

// FindByID loads one row
func (r *gormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var e T
	if err := r.query(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translateError(err, r.resource)
	}
	return &e, nil
}

// FindAll lists one page of rows matching the filter
func (r *gormRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	var out []T
	q := r.spec.page(r.spec.where(r.query(ctx), filter), filter)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts rows matching the filter, ignoring pagination
func (r *gormRepository[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	if err := r.spec.where(r.db.WithContext(ctx).Model(new(T)), filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts the row without touching associations
func (r *gormRepository[T]) Create(ctx context.Context, e *T) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error, r.resource)
}

// Update writes every column of an existing row
func (r *gormRepository[T]) Update(ctx context.Context, e *T) error {
	res := r.db.WithContext(ctx).Model(e).Select("*").Omit("created_at", clause.Associations).Updates(e)
	if res.Error != nil {
		return translateError(res.Error, r.resource)
	}
	if res.RowsAffected == 0 {
		return shared.NotFound(r.resource)
	}
	return nil
}

// Delete removes a row by id
func (r *gormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, r.resource)
	}
	if res.RowsAffected == 0 {
		return shared.NotFound(r.resource)
	}
	return nil
}

// saveVersioned writes fields when the stored version is version-1
func saveVersioned(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int, fields map[string]any, resource string) error {
	fields["version"] = version
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}
	res := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version-1).
		Updates(fields)
	if res.Error != nil {
		return translateError(res.Error, resource)
	}
	if res.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, resource+" was modified by another transaction")
	}
	return nil
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
