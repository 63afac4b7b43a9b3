package catalog

import (
	"context"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Area is a top-level node of the organization taxonomy. Other modules tag
// their rows with the area and subarea names.
type Area struct {
	shared.BaseEntity
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	NameKey     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	Description string    `gorm:"type:text" json:"description"`
	Subareas    []Subarea `gorm:"foreignKey:AreaID;constraint:OnDelete:CASCADE" json:"subareas"`
}

// TableName returns the table name for GORM
func (Area) TableName() string {
	return "areas"
}

// Subarea belongs to one area; names are unique within it
type Subarea struct {
	shared.BaseEntity
	AreaID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subarea_name,priority:1" json:"area_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	NameKey     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_subarea_name,priority:2" json:"-"`
	Description string    `gorm:"type:text" json:"description"`
}

// TableName returns the table name for GORM
func (Subarea) TableName() string {
	return "subareas"
}

// NewArea creates an area
func NewArea(name, description string) (*Area, error) {
	a := &Area{BaseEntity: shared.NewBaseEntity()}
	if err := a.Rename(name, description); err != nil {
		return nil, err
	}
	return a, nil
}

// Rename changes name and description
func (a *Area) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.InvalidInput("area name is required")
	}
	a.Name = name
	a.NameKey = shared.CanonicalKey(name)
	a.Description = description
	a.Touch()
	return nil
}

// NewSubarea creates a subarea under areaID
func NewSubarea(areaID uuid.UUID, name, description string) (*Subarea, error) {
	s := &Subarea{BaseEntity: shared.NewBaseEntity(), AreaID: areaID}
	if err := s.Rename(name, description); err != nil {
		return nil, err
	}
	return s, nil
}

// Rename changes name and description
func (s *Subarea) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.InvalidInput("subarea name is required")
	}
	s.Name = name
	s.NameKey = shared.CanonicalKey(name)
	s.Description = description
	s.Touch()
	return nil
}

// AreaRepository persists areas and their subareas
type AreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Area, error)
	FindByName(ctx context.Context, name string) (*Area, error)
	FindAll(ctx context.Context) ([]Area, error)
	Create(ctx context.Context, a *Area) error
	Update(ctx context.Context, a *Area) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindSubarea(ctx context.Context, areaID, id uuid.UUID) (*Subarea, error)
	CreateSubarea(ctx context.Context, s *Subarea) error
	UpdateSubarea(ctx context.Context, s *Subarea) error
	DeleteSubarea(ctx context.Context, areaID, id uuid.UUID) error
}
