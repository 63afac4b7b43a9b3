package handler

import (
	"net/http"

	recordsapp "github.com/ceramica/backend/internal/application/records"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ContactHandler serves the contact directory
type ContactHandler struct {
	BaseHandler
	service *recordsapp.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service *recordsapp.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// ContactRequest is the body for creating or replacing a contact
type ContactRequest struct {
	Name     string `json:"name" binding:"required,max=200" example:"Lucía Ortega"`
	Company  string `json:"company" binding:"max=200"`
	Email    string `json:"email" binding:"omitempty,email,max=200"`
	Phone    string `json:"phone" binding:"max=50"`
	Position string `json:"position" binding:"max=100"`
	Area     string `json:"area" binding:"max=100"`
	Subarea  string `json:"subarea" binding:"max=100"`
	Address  string `json:"address" binding:"max=500"`
	Notes    string `json:"notes" binding:"max=5000"`
}

func (r ContactRequest) input() records.ContactInput {
	return records.ContactInput{
		Name:     r.Name,
		Company:  r.Company,
		Email:    r.Email,
		Phone:    r.Phone,
		Position: r.Position,
		Area:     r.Area,
		Subarea:  r.Subarea,
		Address:  r.Address,
		Notes:    r.Notes,
	}
}

// List godoc
// @Summary     List contacts
// @Tags        contacts
// @Param       search query string false "Name, company, email or phone"
// @Param       company query string false "Exact company"
// @Success     200 {object} dto.Response
// @Router      /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "company", "area", "subarea")
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

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	contact, err := h.service.Create(c.Request.Context(), req.input(), h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	contact, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete removes a contact together with its attachments
func (h *ContactHandler) Delete(c *gin.Context) {
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
