package handler

import (
	"net/http"

	tasksapp "github.com/ceramica/backend/internal/application/tasks"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TaskHandler serves shared team tasks
type TaskHandler struct {
	BaseHandler
	service *tasksapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service *tasksapp.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// TaskRequest is the body for creating or replacing a task
type TaskRequest struct {
	Title       string `json:"title" binding:"required,max=200" example:"Esmaltar lote 14"`
	Description string `json:"description" binding:"max=5000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Area        string `json:"area" binding:"max=100"`
	Subarea     string `json:"subarea" binding:"max=100"`
	DueDate     string `json:"due_date" example:"2026-11-02"`
	AssignedTo  string `json:"assigned_to"`
	ProjectID   string `json:"project_id"`
}

func (r TaskRequest) input() (tasks.TaskInput, error) {
	due, err := optionalDate("due_date", r.DueDate)
	if err != nil {
		return tasks.TaskInput{}, err
	}
	assignee, err := optionalUUID("assigned_to", r.AssignedTo)
	if err != nil {
		return tasks.TaskInput{}, err
	}
	project, err := optionalUUID("project_id", r.ProjectID)
	if err != nil {
		return tasks.TaskInput{}, err
	}
	return tasks.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    tasks.Priority(r.Priority),
		Area:        r.Area,
		Subarea:     r.Subarea,
		DueDate:     due,
		AssignedTo:  assignee,
		ProjectID:   project,
	}, nil
}

// StatusRequest is the body of the status change endpoints
type StatusRequest struct {
	Status string `json:"status" binding:"required,max=50" example:"in_progress"`
}

// List godoc
// @Summary     List tasks
// @Tags        tasks
// @Param       status query string false "pending, in_progress or completed"
// @Param       assigned_to query string false "Assignee UUID"
// @Param       overdue query bool false "Only open tasks past their due date"
// @Success     200 {object} dto.Response
// @Router      /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "priority", "area", "subarea", "assigned_to",
		"project_id", "created_by", "overdue", "due_date_from", "due_date_to")
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Create adds a task; assigning someone other than the caller notifies them
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.service.ChangeStatus(c.Request.Context(), id, tasks.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
