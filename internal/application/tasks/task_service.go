// Package tasks implements shared tasks, personal to-dos and projects.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ceramica/backend/internal/application/uow"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService handles shared tasks
type TaskService struct {
	repo   tasks.TaskRepository
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(repo tasks.TaskRepository, scope uow.TransactionScope, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, scope: scope, logger: logger}
}

// List returns one page of tasks
func (s *TaskService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[tasks.Task], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Task]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[tasks.Task]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a task by ID
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*tasks.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a pending task. Assigning it to someone else notifies them.
func (s *TaskService) Create(ctx context.Context, in tasks.TaskInput, by *uuid.UUID) (*tasks.Task, error) {
	t, err := tasks.NewTask(in, by)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := checkProject(ctx, repos, t.ProjectID); err != nil {
			return err
		}
		if err := repos.TaskRepo().Create(ctx, t); err != nil {
			return err
		}
		return notifyAssignee(ctx, repos, t, nil, by)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields. A new assignee is notified.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, in tasks.TaskInput, by *uuid.UUID) (*tasks.Task, error) {
	var t *tasks.Task
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		if t, err = repos.TaskRepo().FindByID(ctx, id); err != nil {
			return err
		}
		previous := t.AssignedTo
		if err := t.Update(in); err != nil {
			return err
		}
		if err := checkProject(ctx, repos, t.ProjectID); err != nil {
			return err
		}
		if err := repos.TaskRepo().Update(ctx, t); err != nil {
			return err
		}
		return notifyAssignee(ctx, repos, t, previous, by)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeStatus moves the task along its status machine
func (s *TaskService) ChangeStatus(ctx context.Context, id uuid.UUID, status tasks.Status) (*tasks.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
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

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func checkProject(ctx context.Context, repos uow.Repositories, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := repos.ProjectRepo().FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidInput("project %s does not exist", *id)
		}
		return err
	}
	return nil
}

// notifyAssignee tells a newly assigned user about the task, unless they
// assigned it to themselves.
func notifyAssignee(ctx context.Context, repos uow.Repositories, t *tasks.Task, previous, by *uuid.UUID) error {
	if t.AssignedTo == nil {
		return nil
	}
	if previous != nil && *previous == *t.AssignedTo {
		return nil
	}
	if by != nil && *by == *t.AssignedTo {
		return nil
	}
	n, err := notification.New(*t.AssignedTo, notification.TypeTaskAssigned,
		"Nueva tarea: "+t.Title, t.Description, fmt.Sprintf("/tasks/%s", t.ID))
	if err != nil {
		return err
	}
	return repos.NotificationRepo().Create(ctx, n)
}
