package tasks

import "github.com/ceramica/backend/internal/domain/shared"

// Status is the progress of a task or personal task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows pending ↔ in_progress → completed and the
// completed → pending reopen.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInProgress
	case StatusInProgress:
		return target == StatusPending || target == StatusCompleted
	case StatusCompleted:
		return target == StatusPending
	}
	return false
}

// Priority ranks tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func normalizePriority(p Priority) (Priority, error) {
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.IsValid() {
		return "", shared.InvalidInput("invalid priority %q", p)
	}
	return p, nil
}
