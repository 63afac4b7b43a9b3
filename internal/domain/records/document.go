package records

import (
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document is a filed record whose files live in attachments
type Document struct {
	shared.BaseEntity
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"type:varchar(100);index" json:"category"`
	Area        string     `gorm:"type:varchar(100);index" json:"area"`
	Subarea     string     `gorm:"type:varchar(100)" json:"subarea"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a document
func NewDocument(title, description, category, area, subarea string, createdBy *uuid.UUID) (*Document, error) {
	d := &Document{BaseEntity: shared.NewBaseEntity(), CreatedBy: createdBy}
	if err := d.Update(title, description, category, area, subarea); err != nil {
		return nil, err
	}
	return d, nil
}

// Update replaces the editable fields
func (d *Document) Update(title, description, category, area, subarea string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.InvalidInput("title is required")
	}
	d.Title = title
	d.Description = description
	d.Category = strings.TrimSpace(category)
	d.Area = strings.TrimSpace(area)
	d.Subarea = strings.TrimSpace(subarea)
	d.Touch()
	return nil
}
