package persistence

import (
	"context"

	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var contactSpec = listSpec{
	search: []string{"name", "company", "email", "phone"},
	columns: map[string]string{
		"company": "company",
		"area":    "area",
		"subarea": "subarea",
	},
	sortable:     ContactSortFields,
	defaultOrder: "name",
}

// GormContactRepository implements records.ContactRepository using GORM
type GormContactRepository struct {
	*gormRepository[records.Contact]
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{gormRepository: newGormRepository[records.Contact](db, "contact", contactSpec)}
}

var documentSpec = listSpec{
	search: []string{"title", "description"},
	columns: map[string]string{
		"category": "category",
		"area":     "area",
		"subarea":  "subarea",
	},
	sortable: DocumentSortFields,
}

// GormDocumentRepository implements records.DocumentRepository using GORM
type GormDocumentRepository struct {
	*gormRepository[records.Document]
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{gormRepository: newGormRepository[records.Document](db, "document", documentSpec)}
}

// GormAttachmentRepository implements records.AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// FindByOwner lists the attachments of one row, oldest first
func (r *GormAttachmentRepository) FindByOwner(ctx context.Context, ownerType records.OwnerType, ownerID uuid.UUID) ([]records.Attachment, error) {
	var out []records.Attachment
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at ASC").Order("id").
		Find(&out).Error
	return out, err
}

// FindForOwner loads one attachment when it belongs to the owner
func (r *GormAttachmentRepository) FindForOwner(ctx context.Context, ownerType records.OwnerType, ownerID, id uuid.UUID) (*records.Attachment, error) {
	var a records.Attachment
	err := r.db.WithContext(ctx).
		First(&a, "id = ? AND owner_type = ? AND owner_id = ?", id, ownerType, ownerID).Error
	if err != nil {
		return nil, translateError(err, "attachment")
	}
	return &a, nil
}

// Create inserts attachment metadata
func (r *GormAttachmentRepository) Create(ctx context.Context, a *records.Attachment) error {
	return translateError(r.db.WithContext(ctx).Create(a).Error, "attachment")
}

// Delete removes one attachment
func (r *GormAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&records.Attachment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("attachment")
	}
	return nil
}

// DeleteByOwner removes every attachment of one row
func (r *GormAttachmentRepository) DeleteByOwner(ctx context.Context, ownerType records.OwnerType, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&records.Attachment{}).Error
}

var (
	_ records.ContactRepository    = (*GormContactRepository)(nil)
	_ records.DocumentRepository   = (*GormDocumentRepository)(nil)
	_ records.AttachmentRepository = (*GormAttachmentRepository)(nil)
)
