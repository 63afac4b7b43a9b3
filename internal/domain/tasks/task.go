package tasks

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Task is a shared work item, optionally assigned and grouped in a project
type Task struct {
	shared.BaseEntity
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Area        string     `gorm:"type:varchar(100);index" json:"area"`
	Subarea     string     `gorm:"type:varchar(100)" json:"subarea"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// TaskInput holds the editable task fields
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Area        string
	Subarea     string
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
	ProjectID   *uuid.UUID
}

// NewTask creates a pending task
func NewTask(in TaskInput, createdBy *uuid.UUID) (*Task, error) {
	t := &Task{
		BaseEntity: shared.NewBaseEntity(),
		Status:     StatusPending,
		CreatedBy:  createdBy,
	}
	if err := t.apply(in); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields
func (t *Task) Update(in TaskInput) error {
	if err := t.apply(in); err != nil {
		return err
	}
	t.Touch()
	return nil
}

func (t *Task) apply(in TaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.InvalidInput("title is required")
	}
	p, err := normalizePriority(in.Priority)
	if err != nil {
		return err
	}
	t.Title = title
	t.Description = in.Description
	t.Priority = p
	t.Area = strings.TrimSpace(in.Area)
	t.Subarea = strings.TrimSpace(in.Subarea)
	t.DueDate = in.DueDate
	t.AssignedTo = in.AssignedTo
	t.ProjectID = in.ProjectID
	return nil
}

// ChangeStatus moves the task and maintains CompletedAt
func (t *Task) ChangeStatus(target Status) error {
	if err := checkTransition(t.Status, target); err != nil {
		return err
	}
	t.Status = target
	t.CompletedAt = completedAt(target)
	t.Touch()
	return nil
}

func checkTransition(from, to Status) error {
	if !to.IsValid() {
		return shared.InvalidInput("invalid status %q", to)
	}
	if !from.CanTransitionTo(to) {
		return shared.InvalidState("cannot change status from %s to %s", from, to)
	}
	return nil
}

func completedAt(s Status) *time.Time {
	if s != StatusCompleted {
		return nil
	}
	now := time.Now()
	return &now
}
