package tasks

import (
	"context"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskRepository persists tasks
type TaskRepository interface {
	shared.Repository[Task]
	CountByProject(ctx context.Context, projectID uuid.UUID) (total, completed int64, err error)
	DetachProject(ctx context.Context, projectID uuid.UUID) error
}

// PersonalTaskRepository persists personal tasks; every query is scoped to an owner
type PersonalTaskRepository interface {
	shared.Repository[PersonalTask]
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*PersonalTask, error)
}

// ProjectRepository persists projects
type ProjectRepository interface {
	shared.Repository[Project]
}
