package records

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactRepository persists contacts
type ContactRepository interface {
	shared.Repository[Contact]
}

// DocumentRepository persists documents
type DocumentRepository interface {
	shared.Repository[Document]
}

// AttachmentRepository persists attachment metadata
type AttachmentRepository interface {
	FindByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]Attachment, error)
	FindForOwner(ctx context.Context, ownerType OwnerType, ownerID, id uuid.UUID) (*Attachment, error)
	Create(ctx context.Context, a *Attachment) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) error
}
