package tasks

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PersonalTask is a to-do visible only to its owner
type PersonalTask struct {
	shared.BaseEntity
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the table name for GORM
func (PersonalTask) TableName() string {
	return "personal_tasks"
}

// NewPersonalTask creates a pending personal task
func NewPersonalTask(owner uuid.UUID, title, description string, priority Priority, due *time.Time) (*PersonalTask, error) {
	if owner == uuid.Nil {
		return nil, shared.InvalidInput("owner is required")
	}
	t := &PersonalTask{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    owner,
		Status:     StatusPending,
	}
	if err := t.Update(title, description, priority, due); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields
func (t *PersonalTask) Update(title, description string, priority Priority, due *time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.InvalidInput("title is required")
	}
	p, err := normalizePriority(priority)
	if err != nil {
		return err
	}
	t.Title = title
	t.Description = description
	t.Priority = p
	t.DueDate = due
	t.Touch()
	return nil
}

// ChangeStatus moves the task and maintains CompletedAt
func (t *PersonalTask) ChangeStatus(target Status) error {
	if err := checkTransition(t.Status, target); err != nil {
		return err
	}
	t.Status = target
	t.CompletedAt = completedAt(target)
	t.Touch()
	return nil
}
