package persistence

import (
	"context"
	"time"

	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var taskSpec = listSpec{
	search: []string{"title", "description"},
	columns: map[string]string{
		"status":      "status",
		"priority":    "priority",
		"area":        "area",
		"subarea":     "subarea",
		"assigned_to": "assigned_to",
		"project_id":  "project_id",
		"due_date":    "due_date",
		"created_by":  "created_by",
	},
	scopes: map[string]func(*gorm.DB, any) *gorm.DB{
		"overdue": func(db *gorm.DB, v any) *gorm.DB {
			if !boolValue(v) {
				return db
			}
			return db.Where("due_date < ? AND status <> ?", time.Now(), tasks.StatusCompleted)
		},
	},
	sortable:     TaskSortFields,
	defaultOrder: "created_at",
}

// GormTaskRepository implements tasks.TaskRepository using GORM
type GormTaskRepository struct {
	*gormRepository[tasks.Task]
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{gormRepository: newGormRepository[tasks.Task](db, "task", taskSpec)}
}

// CountByProject counts all and completed tasks of a project
func (r *GormTaskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (total, completed int64, err error) {
	var row struct {
		Total     int64
		Completed int64
	}
	err = r.db.WithContext(ctx).Model(&tasks.Task{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed", tasks.StatusCompleted).
		Where("project_id = ?", projectID).
		Scan(&row).Error
	return row.Total, row.Completed, err
}

// DetachProject clears the project of every task in it
func (r *GormTaskRepository) DetachProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&tasks.Task{}).
		Where("project_id = ?", projectID).
		Updates(map[string]any{"project_id": nil, "updated_at": time.Now()}).Error
}

var personalTaskSpec = listSpec{
	search: []string{"title", "description"},
	columns: map[string]string{
		"owner_id": "owner_id",
		"status":   "status",
		"priority": "priority",
		"due_date": "due_date",
	},
	sortable: PersonalTaskSortFields,
}

// GormPersonalTaskRepository implements tasks.PersonalTaskRepository using GORM.
// Listing is scoped by the owner_id filter the service always sets.
type GormPersonalTaskRepository struct {
	*gormRepository[tasks.PersonalTask]
}

// NewGormPersonalTaskRepository creates a new GormPersonalTaskRepository
func NewGormPersonalTaskRepository(db *gorm.DB) *GormPersonalTaskRepository {
	return &GormPersonalTaskRepository{gormRepository: newGormRepository[tasks.PersonalTask](db, "personal task", personalTaskSpec)}
}

// FindByIDForOwner loads a task only when it belongs to the owner
func (r *GormPersonalTaskRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*tasks.PersonalTask, error) {
	var t tasks.PersonalTask
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, translateError(err, "personal task")
	}
	return &t, nil
}

var projectSpec = listSpec{
	search: []string{"name", "description"},
	columns: map[string]string{
		"status":     "status",
		"area":       "area",
		"subarea":    "subarea",
		"start_date": "start_date",
		"end_date":   "end_date",
	},
	sortable:     ProjectSortFields,
	defaultOrder: "name",
}

// GormProjectRepository implements tasks.ProjectRepository using GORM
type GormProjectRepository struct {
	*gormRepository[tasks.Project]
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{gormRepository: newGormRepository[tasks.Project](db, "project", projectSpec)}
}

var (
	_ tasks.TaskRepository         = (*GormTaskRepository)(nil)
	_ tasks.PersonalTaskRepository = (*GormPersonalTaskRepository)(nil)
	_ tasks.ProjectRepository      = (*GormProjectRepository)(nil)
)
