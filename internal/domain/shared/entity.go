package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VersionedEntity adds a version counter used for optimistic locking.
type VersionedEntity struct {
	BaseEntity
	Version int `gorm:"not null;default:1" json:"version"`
}

// IncrementVersion increments the version and touches UpdatedAt
func (v *VersionedEntity) IncrementVersion() {
	v.Version++
	v.Touch()
}

// NewVersionedEntity creates a versioned entity at version 1
func NewVersionedEntity() VersionedEntity {
	return VersionedEntity{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
