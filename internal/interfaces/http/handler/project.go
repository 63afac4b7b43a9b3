package handler

import (
	"net/http"

	tasksapp "github.com/ceramica/backend/internal/application/tasks"
	"github.com/ceramica/backend/internal/domain/tasks"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProjectHandler serves projects and their task lists
type ProjectHandler struct {
	BaseHandler
	service *tasksapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(service *tasksapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// ProjectRequest is the body for creating or replacing a project
type ProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Area        string `json:"area" binding:"max=100"`
	Subarea     string `json:"subarea" binding:"max=100"`
	Status      string `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (r ProjectRequest) input() (tasks.ProjectInput, error) {
	start, err := optionalDate("start_date", r.StartDate)
	if err != nil {
		return tasks.ProjectInput{}, err
	}
	end, err := optionalDate("end_date", r.EndDate)
	if err != nil {
		return tasks.ProjectInput{}, err
	}
	return tasks.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Area:        r.Area,
		Subarea:     r.Subarea,
		Status:      tasks.ProjectStatus(r.Status),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func (h *ProjectHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "area", "subarea",
		"start_date_from", "start_date_to", "end_date_from", "end_date_to")
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

// Get returns the project with its completion progress
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Tasks lists the tasks linked to a project
func (h *ProjectHandler) Tasks(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "status", "priority", "assigned_to")
	if !ok {
		return
	}
	page, err := h.service.Tasks(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	project, err := h.service.Create(c.Request.Context(), in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req ProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	project, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Delete removes a project; its tasks are kept and detached
func (h *ProjectHandler) Delete(c *gin.Context) {
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
