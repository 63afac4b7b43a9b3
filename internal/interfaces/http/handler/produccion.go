package handler

import (
	"net/http"

	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProduccionHandler serves in-process inventory by product, stage and color
type ProduccionHandler struct {
	BaseHandler
	service *inventoryapp.ProduccionService
}

// NewProduccionHandler creates a new ProduccionHandler
func NewProduccionHandler(service *inventoryapp.ProduccionService) *ProduccionHandler {
	return &ProduccionHandler{service: service}
}

// ProduccionRequest is the body for creating or replacing a produccion row
type ProduccionRequest struct {
	Producto    string `json:"producto" binding:"required,max=200" example:"Taza Talavera"`
	Etapa       string `json:"etapa" binding:"required,max=100" example:"Esmaltado"`
	Color       string `json:"color" binding:"max=100" example:"Azul cobalto"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
	MinQuantity int    `json:"min_quantity" binding:"gte=0"`
	Notes       string `json:"notes" binding:"max=2000"`
}

func (r ProduccionRequest) input() inventoryapp.ProduccionInput {
	return inventoryapp.ProduccionInput(r)
}

// QuantityRequest is the body of the input and output endpoints
type QuantityRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Notes    string `json:"notes" binding:"max=2000"`
}

// AdjustRequest sets a row's quantity to an absolute value
type AdjustRequest struct {
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Reason   string `json:"reason" binding:"required,max=500"`
}

// TransferRequest moves pieces to another stage of the same product and color
type TransferRequest struct {
	FromID   string `json:"from_id" binding:"required,uuid"`
	ToEtapa  string `json:"to_etapa" binding:"required,max=100"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Notes    string `json:"notes" binding:"max=2000"`
}

// canonicalFilter applies the inventory key filters, which match on the
// canonical form of the name
func canonicalFilter(c *gin.Context, f shared.Filter, keys ...string) shared.Filter {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			f = f.With(key, shared.CanonicalKey(v))
		}
	}
	if low, ok := boolQuery(c, "low_stock"); ok {
		f = f.With("low_stock", low)
	}
	return f
}

// List godoc
// @Summary     List produccion rows
// @Tags        produccion
// @Param       producto query string false "Product, matched ignoring case and accents"
// @Param       etapa query string false "Stage"
// @Param       color query string false "Color"
// @Param       low_stock query bool false "Only rows at or below their minimum"
// @Success     200 {object} dto.Response
// @Router      /produccion [get]
func (h *ProduccionHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}
	filter = canonicalFilter(c, filter, "producto", "etapa", "color")
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *ProduccionHandler) Get(c *gin.Context) {
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

func (h *ProduccionHandler) Create(c *gin.Context) {
	var req ProduccionRequest
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

func (h *ProduccionHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req ProduccionRequest
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

// Delete removes a row that has nothing reserved
func (h *ProduccionHandler) Delete(c *gin.Context) {
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

func (h *ProduccionHandler) Input(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req QuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.Input(c.Request.Context(), id, req.Quantity, req.Notes, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Output removes pieces; only unreserved pieces can leave
func (h *ProduccionHandler) Output(c *gin.Context) {
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

func (h *ProduccionHandler) Adjust(c *gin.Context) {
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

// Transfer moves available pieces to another stage in one transaction,
// creating the destination row when needed
func (h *ProduccionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.Transfer(c.Request.Context(), inventoryapp.TransferInput{
		FromID:   uuid.MustParse(req.FromID),
		ToEtapa:  req.ToEtapa,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

func (h *ProduccionHandler) Movements(c *gin.Context) {
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

func (h *ProduccionHandler) Allocations(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	allocs, err := h.service.Allocations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocs)
}

// Availability sums available pieces per stage for one product and color
func (h *ProduccionHandler) Availability(c *gin.Context) {
	stages, err := h.service.Availability(c.Request.Context(), c.Query("producto"), c.Query("color"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stages)
}

// Reconcile recomputes apartados from active allocations. With fix=true
// the drifted rows are corrected. Admin only.
func (h *ProduccionHandler) Reconcile(c *gin.Context) {
	fix, _ := boolQuery(c, "fix")
	drifts, err := h.service.Reconcile(c.Request.Context(), fix, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"fixed": fix, "drifts": drifts})
}
