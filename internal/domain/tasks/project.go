package tasks

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectStatus is the state of a project
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the status is known
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project groups tasks
type Project struct {
	shared.BaseEntity
	Name        string        `gorm:"type:varchar(200);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Area        string        `gorm:"type:varchar(100);index" json:"area"`
	Subarea     string        `gorm:"type:varchar(100)" json:"subarea"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedBy   *uuid.UUID    `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// ProjectInput holds the editable project fields
type ProjectInput struct {
	Name        string
	Description string
	Area        string
	Subarea     string
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// NewProject creates a project
func NewProject(in ProjectInput, createdBy *uuid.UUID) (*Project, error) {
	p := &Project{BaseEntity: shared.NewBaseEntity(), CreatedBy: createdBy}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields
func (p *Project) Update(in ProjectInput) error {
	if err := p.apply(in); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Project) apply(in ProjectInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.InvalidInput("name is required")
	}
	if in.Status == "" {
		in.Status = ProjectPlanning
	}
	if !in.Status.IsValid() {
		return shared.InvalidInput("invalid project status %q", in.Status)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return shared.InvalidInput("end_date cannot be before start_date")
	}
	p.Name = name
	p.Description = in.Description
	p.Area = strings.TrimSpace(in.Area)
	p.Subarea = strings.TrimSpace(in.Subarea)
	p.Status = in.Status
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	return nil
}

// Progress summarizes the tasks of a project
type Progress struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Percent   int   `json:"percent"`
}

// NewProgress computes the completion percentage, rounded down
func NewProgress(total, completed int64) Progress {
	p := Progress{Total: total, Completed: completed}
	if total > 0 {
		p.Percent = int(completed * 100 / total)
	}
	return p
}
