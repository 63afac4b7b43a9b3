package records

import (
	"context"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactService handles contacts
type ContactService struct {
	repo  records.ContactRepository
	scope uow.TransactionScope
}

// NewContactService creates a new ContactService
func NewContactService(repo records.ContactRepository, scope uow.TransactionScope) *ContactService {
	return &ContactService{repo: repo, scope: scope}
}

// List returns one page of contacts
func (s *ContactService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[records.Contact], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[records.Contact]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[records.Contact]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a contact by ID
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*records.Contact, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a contact
func (s *ContactService) Create(ctx context.Context, in records.ContactInput, by *uuid.UUID) (*records.Contact, error) {
	c, err := records.NewContact(in, by)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, in records.ContactInput) (*records.Contact, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a contact and its attachments
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.AttachmentRepo().DeleteByOwner(ctx, records.OwnerContact, id); err != nil {
			return err
		}
		return repos.ContactRepo().Delete(ctx, id)
	})
}
