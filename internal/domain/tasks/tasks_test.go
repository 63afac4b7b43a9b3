package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusPending, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusCompleted, StatusPending, true},
		{StatusPending, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTask_CompletionTimestamps(t *testing.T) {
	task, err := NewTask(TaskInput{Title: " Revisar horno "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Revisar horno", task.Title)
	assert.Equal(t, PriorityMedium, task.Priority)

	require.NoError(t, task.ChangeStatus(StatusInProgress))
	require.NoError(t, task.ChangeStatus(StatusCompleted))
	assert.NotNil(t, task.CompletedAt)

	require.NoError(t, task.ChangeStatus(StatusPending))
	assert.Nil(t, task.CompletedAt)

	assert.True(t, errors.Is(task.ChangeStatus("done"), shared.ErrInvalidInput))
	assert.True(t, errors.Is(task.ChangeStatus(StatusCompleted), shared.ErrInvalidState))
}

func TestTask_Validation(t *testing.T) {
	_, err := NewTask(TaskInput{}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	_, err = NewTask(TaskInput{Title: "x", Priority: "critical"}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestPersonalTask(t *testing.T) {
	_, err := NewPersonalTask(uuid.Nil, "x", "", "", nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	pt, err := NewPersonalTask(uuid.New(), "Llamar proveedor", "", PriorityHigh, nil)
	require.NoError(t, err)
	require.NoError(t, pt.ChangeStatus(StatusInProgress))
	require.NoError(t, pt.ChangeStatus(StatusCompleted))
	assert.NotNil(t, pt.CompletedAt)
}

func TestProject_Dates(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err := NewProject(ProjectInput{Name: "Feria", StartDate: &start, EndDate: &end}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	p, err := NewProject(ProjectInput{Name: "Feria", StartDate: &start, EndDate: &start}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProjectPlanning, p.Status)

	assert.True(t, errors.Is(p.Update(ProjectInput{Name: "Feria", Status: "paused"}), shared.ErrInvalidInput))
}

func TestNewProgress(t *testing.T) {
	assert.Equal(t, Progress{}, NewProgress(0, 0))
	assert.Equal(t, Progress{Total: 3, Completed: 1, Percent: 33}, NewProgress(3, 1))
	assert.Equal(t, 100, NewProgress(4, 4).Percent)
}
