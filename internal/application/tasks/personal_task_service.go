package tasks

import (
	"context"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/google/uuid"
)

// PersonalTaskInput holds the editable fields of a personal task
type PersonalTaskInput struct {
	Title       string
	Description string
	Priority    tasks.Priority
	DueDate     *time.Time
}

// PersonalTaskService handles to-dos that only their owner can see. Tasks of
// other owners behave as missing.
type PersonalTaskService struct {
	repo tasks.PersonalTaskRepository
}

// NewPersonalTaskService creates a new PersonalTaskService
func NewPersonalTaskService(repo tasks.PersonalTaskRepository) *PersonalTaskService {
	return &PersonalTaskService{repo: repo}
}

// List returns one page of the owner's tasks
func (s *PersonalTaskService) List(ctx context.Context, owner uuid.UUID, filter shared.Filter) (shared.Paginated[tasks.PersonalTask], error) {
	filter = filter.With("owner_id", owner)
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.PersonalTask]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.PersonalTask]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one of the owner's tasks
func (s *PersonalTaskService) Get(ctx context.Context, owner, id uuid.UUID) (*tasks.PersonalTask, error) {
	return s.repo.FindByIDForOwner(ctx, owner, id)
}

// Create adds a pending task for the owner
func (s *PersonalTaskService) Create(ctx context.Context, owner uuid.UUID, in PersonalTaskInput) (*tasks.PersonalTask, error) {
	t, err := tasks.NewPersonalTask(owner, in.Title, in.Description, in.Priority, in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields
func (s *PersonalTaskService) Update(ctx context.Context, owner, id uuid.UUID, in PersonalTaskInput) (*tasks.PersonalTask, error) {
	t, err := s.repo.FindByIDForOwner(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := t.Update(in.Title, in.Description, in.Priority, in.DueDate); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeStatus moves the task along its status machine
func (s *PersonalTaskService) ChangeStatus(ctx context.Context, owner, id uuid.UUID, status tasks.Status) (*tasks.PersonalTask, error) {
	t, err := s.repo.FindByIDForOwner(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := t.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes one of the owner's tasks
func (s *PersonalTaskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if _, err := s.repo.FindByIDForOwner(ctx, owner, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
