package tasks

import (
	"context"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/google/uuid"
)

// ProjectDetail is a project with the completion of its tasks
type ProjectDetail struct {
	tasks.Project
	Progress tasks.Progress `json:"progress"`
}

// ProjectService handles projects
type ProjectService struct {
	repo  tasks.ProjectRepository
	tasks tasks.TaskRepository
	scope uow.TransactionScope
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo tasks.ProjectRepository, taskRepo tasks.TaskRepository, scope uow.TransactionScope) *ProjectService {
	return &ProjectService{repo: repo, tasks: taskRepo, scope: scope}
}

// List returns one page of projects
func (s *ProjectService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[tasks.Project], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Project]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Project]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a project with its progress
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*ProjectDetail, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, completed, err := s.tasks.CountByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: *p, Progress: tasks.NewProgress(total, completed)}, nil
}

// Tasks returns one page of the project's tasks
func (s *ProjectService) Tasks(ctx context.Context, id uuid.UUID, filter shared.Filter) (shared.Paginated[tasks.Task], error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return shared.Paginated[tasks.Task]{}, err
	}
	filter = filter.With("project_id", id)
	items, err := s.tasks.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Task]{}, err
	}
	total, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Task]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Create adds a project
func (s *ProjectService) Create(ctx context.Context, in tasks.ProjectInput, by *uuid.UUID) (*tasks.Project, error) {
	p, err := tasks.NewProject(in, by)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, in tasks.ProjectInput) (*tasks.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project; its tasks stay, detached
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.ProjectRepo().FindByID(ctx, id); err != nil {
			return err
		}
		if err := repos.TaskRepo().DetachProject(ctx, id); err != nil {
			return err
		}
		return repos.ProjectRepo().Delete(ctx, id)
	})
}
