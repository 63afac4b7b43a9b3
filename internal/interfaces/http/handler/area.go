package handler

import (
	catalogapp "github.com/ceramica/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// AreaHandler serves the area and subarea taxonomy
type AreaHandler struct {
	BaseHandler
	service *catalogapp.AreaService
}

// NewAreaHandler creates a new AreaHandler
func NewAreaHandler(service *catalogapp.AreaService) *AreaHandler {
	return &AreaHandler{service: service}
}

// AreaRequest is the body for creating or renaming an area or subarea
type AreaRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Producción"`
	Description string `json:"description" binding:"max=500"`
}

// List godoc
// @Summary     List areas with their subareas
// @Tags        areas
// @Success     200 {object} dto.Response
// @Router      /areas [get]
func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, areas)
}

func (h *AreaHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	area, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, area)
}

func (h *AreaHandler) Create(c *gin.Context) {
	var req AreaRequest
	if !h.BindJSON(c, &req) {
		return
	}
	area, err := h.service.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, area)
}

func (h *AreaHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req AreaRequest
	if !h.BindJSON(c, &req) {
		return
	}
	area, err := h.service.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, area)
}

// Delete removes an area and its subareas
func (h *AreaHandler) Delete(c *gin.Context) {
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

func (h *AreaHandler) AddSubarea(c *gin.Context) {
	areaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req AreaRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sub, err := h.service.AddSubarea(c.Request.Context(), areaID, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

func (h *AreaHandler) UpdateSubarea(c *gin.Context) {
	areaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	subID, ok := h.ParseID(c, "subareaId")
	if !ok {
		return
	}
	var req AreaRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sub, err := h.service.UpdateSubarea(c.Request.Context(), areaID, subID, req.Name, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

func (h *AreaHandler) DeleteSubarea(c *gin.Context) {
	areaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	subID, ok := h.ParseID(c, "subareaId")
	if !ok {
		return
	}
	if err := h.service.DeleteSubarea(c.Request.Context(), areaID, subID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
