package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/catalog"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func subareaOrder(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// GormAreaRepository implements catalog.AreaRepository using GORM
type GormAreaRepository struct {
	db *gorm.DB
}

// NewGormAreaRepository creates a new GormAreaRepository
func NewGormAreaRepository(db *gorm.DB) *GormAreaRepository {
	return &GormAreaRepository{db: db}
}

// FindByID finds an area with its subareas
func (r *GormAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Area, error) {
	var a catalog.Area
	if err := r.db.WithContext(ctx).Preload("Subareas", subareaOrder).First(&a, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "area")
	}
	return &a, nil
}

// FindByName finds an area by its canonical name
func (r *GormAreaRepository) FindByName(ctx context.Context, name string) (*catalog.Area, error) {
	var a catalog.Area
	err := r.db.WithContext(ctx).Preload("Subareas", subareaOrder).
		First(&a, "name_key = ?", shared.CanonicalKey(name)).Error
	if err != nil {
		return nil, translateError(err, "area")
	}
	return &a, nil
}

// FindAll lists every area with its subareas, by name
func (r *GormAreaRepository) FindAll(ctx context.Context) ([]catalog.Area, error) {
	var out []catalog.Area
	err := r.db.WithContext(ctx).Preload("Subareas", subareaOrder).Order("name ASC").Find(&out).Error
	return out, err
}

// Create inserts an area without its subareas
func (r *GormAreaRepository) Create(ctx context.Context, a *catalog.Area) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error, "area")
}

// Update writes name and description
func (r *GormAreaRepository) Update(ctx context.Context, a *catalog.Area) error {
	res := r.db.WithContext(ctx).Model(&catalog.Area{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":        a.Name,
		"name_key":    a.NameKey,
		"description": a.Description,
		"updated_at":  a.UpdatedAt,
	})
	if res.Error != nil {
		return translateError(res.Error, "area")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("area")
	}
	return nil
}

// Delete removes an area and its subareas
func (r *GormAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("area_id = ?", id).Delete(&catalog.Subarea{}).Error; err != nil {
		return err
	}
	res := db.Delete(&catalog.Area{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("area")
	}
	return nil
}

// FindSubarea loads a subarea of the area
func (r *GormAreaRepository) FindSubarea(ctx context.Context, areaID, id uuid.UUID) (*catalog.Subarea, error) {
	var s catalog.Subarea
	if err := r.db.WithContext(ctx).First(&s, "id = ? AND area_id = ?", id, areaID).Error; err != nil {
		return nil, translateError(err, "subarea")
	}
	return &s, nil
}

// CreateSubarea inserts a subarea; names are unique within an area
func (r *GormAreaRepository) CreateSubarea(ctx context.Context, s *catalog.Subarea) error {
	return translateError(r.db.WithContext(ctx).Create(s).Error, "subarea")
}

// UpdateSubarea writes name and description
func (r *GormAreaRepository) UpdateSubarea(ctx context.Context, s *catalog.Subarea) error {
	res := r.db.WithContext(ctx).Model(&catalog.Subarea{}).
		Where("id = ? AND area_id = ?", s.ID, s.AreaID).
		Updates(map[string]any{
			"name":        s.Name,
			"name_key":    s.NameKey,
			"description": s.Description,
			"updated_at":  s.UpdatedAt,
		})
	if res.Error != nil {
		return translateError(res.Error, "subarea")
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("subarea")
	}
	return nil
}

// DeleteSubarea removes a subarea of the area
func (r *GormAreaRepository) DeleteSubarea(ctx context.Context, areaID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&catalog.Subarea{}, "id = ? AND area_id = ?", id, areaID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("subarea")
	}
	return nil
}

var _ catalog.AreaRepository = (*GormAreaRepository)(nil)
