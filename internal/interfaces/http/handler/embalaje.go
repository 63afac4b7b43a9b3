package handler

import (
	"net/http"

	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// EmbalajeHandler serves packed-goods inventory
type EmbalajeHandler struct {
	BaseHandler
	service *inventoryapp.EmbalajeService
}

// NewEmbalajeHandler creates a new EmbalajeHandler
func NewEmbalajeHandler(service *inventoryapp.EmbalajeService) *EmbalajeHandler {
	return &EmbalajeHandler{service: service}
}

// EmbalajeRequest is the body for creating or replacing an embalaje row
type EmbalajeRequest struct {
	Producto     string `json:"producto" binding:"required,max=200"`
	Color        string `json:"color" binding:"max=100"`
	Presentacion string `json:"presentacion" binding:"required,max=100" example:"Caja 6 piezas"`
	Quantity     int    `json:"quantity" binding:"gte=0"`
	MinQuantity  int    `json:"min_quantity" binding:"gte=0"`
	Notes        string `json:"notes" binding:"max=2000"`
}

func (r EmbalajeRequest) input() inventoryapp.EmbalajeInput {
	return inventoryapp.EmbalajeInput(r)
}

// PackRequest adds packed pieces, optionally drawn from a produccion row
type PackRequest struct {
	Quantity         int    `json:"quantity" binding:"required,gt=0"`
	FromProduccionID string `json:"from_produccion_id" binding:"omitempty,uuid"`
	Notes            string `json:"notes" binding:"max=2000"`
}

func (h *EmbalajeHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}
	filter = canonicalFilter(c, filter, "producto", "color", "presentacion")
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *EmbalajeHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *EmbalajeHandler) Create(c *gin.Context) {
	var req EmbalajeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req.input(), h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *EmbalajeHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req EmbalajeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *EmbalajeHandler) Delete(c *gin.Context) {
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

// Input packs pieces. With from_produccion_id the same quantity leaves that
// produccion row in the same transaction.
func (h *EmbalajeHandler) Input(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req PackRequest
	if !h.BindJSON(c, &req) {
		return
	}
	from, err := optionalUUID("from_produccion_id", req.FromProduccionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	item, err := h.service.Input(c.Request.Context(), id, inventoryapp.PackInput{
		Quantity:         req.Quantity,
		FromProduccionID: from,
		Notes:            req.Notes,
	}, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *EmbalajeHandler) Output(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Output(c.Request.Context(), id, req.Quantity, req.Notes, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *EmbalajeHandler) Adjust(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Adjust(c.Request.Context(), id, *req.Quantity, req.Reason, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *EmbalajeHandler) Movements(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "kind", "reference_type", "created_at_from", "created_at_to")
	if !ok {
		return
	}
	page, err := h.service.Movements(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
