package handler

import (
	"net/http"

	tasksapp "github.com/ceramica/backend/internal/application/tasks"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PersonalTaskHandler serves the caller's private to-do list. Every
// operation is scoped to the authenticated user.
type PersonalTaskHandler struct {
	BaseHandler
	service *tasksapp.PersonalTaskService
}

// NewPersonalTaskHandler creates a new PersonalTaskHandler
func NewPersonalTaskHandler(service *tasksapp.PersonalTaskService) *PersonalTaskHandler {
	return &PersonalTaskHandler{service: service}
}

// PersonalTaskRequest is the body for creating or replacing a personal task
type PersonalTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     string `json:"due_date"`
}

func (r PersonalTaskRequest) input() (tasksapp.PersonalTaskInput, error) {
	due, err := optionalDate("due_date", r.DueDate)
	if err != nil {
		return tasksapp.PersonalTaskInput{}, err
	}
	return tasksapp.PersonalTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    tasks.Priority(r.Priority),
		DueDate:     due,
	}, nil
}

func (h *PersonalTaskHandler) List(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "status", "priority", "due_date_from", "due_date_to")
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *PersonalTaskHandler) Get(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *PersonalTaskHandler) Create(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	var req PersonalTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), owner, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

func (h *PersonalTaskHandler) Update(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req PersonalTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), owner, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *PersonalTaskHandler) ChangeStatus(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.service.ChangeStatus(c.Request.Context(), owner, id, tasks.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *PersonalTaskHandler) Delete(c *gin.Context) {
	owner, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
