package handler

import (
	"net/http"

	ecommerceapp "github.com/ceramica/backend/internal/application/ecommerce"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// KitHandler serves e-commerce kits and their assembled stock
type KitHandler struct {
	BaseHandler
	service *ecommerceapp.KitService
}

// NewKitHandler creates a new KitHandler
func NewKitHandler(service *ecommerceapp.KitService) *KitHandler {
	return &KitHandler{service: service}
}

// KitItemRequest is one component of a kit
type KitItemRequest struct {
	Producto       string `json:"producto" binding:"required,max=200"`
	Color          string `json:"color" binding:"required,max=100"`
	QuantityPerKit int    `json:"quantity_per_kit" binding:"required,gt=0"`
}

// KitRequest is the body for creating or replacing a kit. Active defaults
// to true.
type KitRequest struct {
	SKU         string           `json:"sku" binding:"required,max=64" example:"KIT-DESAYUNO-AZUL"`
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Price       decimal.Decimal  `json:"price" swaggertype:"string"`
	Active      *bool            `json:"active"`
	Items       []KitItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r KitRequest) input() (ecommerce.KitInput, []ecommerce.KitItemInput) {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	items := make([]ecommerce.KitItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = ecommerce.KitItemInput(it)
	}
	return ecommerce.KitInput{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Active:      active,
	}, items
}

// StockRequest assembles (positive) or disassembles (negative) kits
type StockRequest struct {
	Delta int `json:"delta" binding:"required,ne=0"`
}

func (h *KitHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}
	if active, set := boolQuery(c, "active"); set {
		filter = filter.With("active", active)
	}
	if inStock, set := boolQuery(c, "in_stock"); set {
		filter = filter.With("in_stock", inStock)
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *KitHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	kit, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kit)
}

func (h *KitHandler) Create(c *gin.Context) {
	var req KitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, items := req.input()
	kit, err := h.service.Create(c.Request.Context(), in, items, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, kit)
}

// Update replaces the kit. Items can only change while the kit has no
// stock and no open order references it.
func (h *KitHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req KitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, items := req.input()
	kit, err := h.service.Update(c.Request.Context(), id, in, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kit)
}

func (h *KitHandler) Delete(c *gin.Context) {
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

// AdjustStock godoc
// @Summary     Assemble or disassemble kits
// @Description A positive delta reserves delta x quantity_per_kit pieces for every item; a negative delta releases them.
// @Tags        ecommerce
// @Param       id path string true "Kit ID"
// @Param       Idempotency-Key header string false "Replay protection key"
// @Param       request body StockRequest true "Stock change"
// @Success     200 {object} dto.Response
// @Failure     409 {object} dto.Response
// @Router      /ecommerce/kits/{id}/stock [post]
func (h *KitHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kit, err := h.service.AdjustStock(c.Request.Context(), id, req.Delta, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kit)
}

func (h *KitHandler) Allocations(c *gin.Context) {
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
