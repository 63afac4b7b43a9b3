package records

import (
	"context"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentInput holds the editable document fields
type DocumentInput struct {
	Title       string
	Description string
	Category    string
	Area        string
	Subarea     string
}

// DocumentService handles documents
type DocumentService struct {
	repo  records.DocumentRepository
	scope uow.TransactionScope
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repo records.DocumentRepository, scope uow.TransactionScope) *DocumentService {
	return &DocumentService{repo: repo, scope: scope}
}

// List returns one page of documents
func (s *DocumentService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[records.Document], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[records.Document]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[records.Document]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a document by ID
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*records.Document, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a document
func (s *DocumentService) Create(ctx context.Context, in DocumentInput, by *uuid.UUID) (*records.Document, error) {
	d, err := records.NewDocument(in.Title, in.Description, in.Category, in.Area, in.Subarea, by)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update replaces the editable fields
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, in DocumentInput) (*records.Document, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Update(in.Title, in.Description, in.Category, in.Area, in.Subarea); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a document and its attachments
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.AttachmentRepo().DeleteByOwner(ctx, records.OwnerDocument, id); err != nil {
			return err
		}
		return repos.DocumentRepo().Delete(ctx, id)
	})
}
