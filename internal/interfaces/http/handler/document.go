package handler

import (
	"net/http"

	recordsapp "github.com/ceramica/backend/internal/application/records"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DocumentHandler serves the document register
type DocumentHandler struct {
	BaseHandler
	service *recordsapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service *recordsapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// DocumentRequest is the body for creating or replacing a document
type DocumentRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Category    string `json:"category" binding:"max=100"`
	Area        string `json:"area" binding:"max=100"`
	Subarea     string `json:"subarea" binding:"max=100"`
}

func (r DocumentRequest) input() recordsapp.DocumentInput {
	return recordsapp.DocumentInput(r)
}

func (h *DocumentHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "category", "area", "subarea")
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

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req DocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	doc, err := h.service.Create(c.Request.Context(), req.input(), h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req DocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	doc, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
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
