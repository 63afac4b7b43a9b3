package handler

import (
	"net/http"

	ecommerceapp "github.com/ceramica/backend/internal/application/ecommerce"
	"github.com/ceramica/backend/internal/domain/ecommerce"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EcommercePedidoHandler serves orders from online sales channels
type EcommercePedidoHandler struct {
	BaseHandler
	service *ecommerceapp.PedidoService
}

// NewEcommercePedidoHandler creates a new EcommercePedidoHandler
func NewEcommercePedidoHandler(service *ecommerceapp.PedidoService) *EcommercePedidoHandler {
	return &EcommercePedidoHandler{service: service}
}

// EcommerceItemRequest is one kit line of an order
type EcommerceItemRequest struct {
	KitID     string          `json:"kit_id" binding:"required,uuid"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

// EcommercePedidoRequest is the body for registering an order
type EcommercePedidoRequest struct {
	Channel         string                 `json:"channel" binding:"required,oneof=web mercadolibre amazon shopify other"`
	ExternalOrderID string                 `json:"external_order_id" binding:"required,max=100"`
	CustomerName    string                 `json:"customer_name" binding:"required,max=200"`
	ShippingAddress string                 `json:"shipping_address" binding:"max=1000"`
	Notes           string                 `json:"notes" binding:"max=5000"`
	Items           []EcommerceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// EcommerceDetailsRequest edits the descriptive fields of a pending order
type EcommerceDetailsRequest struct {
	CustomerName    string `json:"customer_name" binding:"required,max=200"`
	ShippingAddress string `json:"shipping_address" binding:"max=1000"`
	Notes           string `json:"notes" binding:"max=5000"`
}

func (h *EcommercePedidoHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "channel", "status", "kit_id", "created_at_from", "created_at_to")
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

func (h *EcommercePedidoHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create registers an order and takes its kits from stock
func (h *EcommercePedidoHandler) Create(c *gin.Context) {
	var req EcommercePedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	items := make([]ecommerce.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = ecommerce.ItemInput{
			KitID:     uuid.MustParse(it.KitID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	p, err := h.service.Create(c.Request.Context(), ecommerce.PedidoInput{
		Channel:         ecommerce.Channel(req.Channel),
		ExternalOrderID: req.ExternalOrderID,
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		Items:           items,
	}, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

func (h *EcommercePedidoHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req EcommerceDetailsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, ecommerceapp.DetailsInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *EcommercePedidoHandler) Delete(c *gin.Context) {
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

func (h *EcommercePedidoHandler) Ship(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Ship(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Deliver consumes the produccion pieces held by the ordered kits
func (h *EcommercePedidoHandler) Deliver(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Deliver(c.Request.Context(), id, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Cancel returns the ordered kits to stock
func (h *EcommercePedidoHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *EcommercePedidoHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.ChangeStatus(c.Request.Context(), id, ecommerce.Status(req.Status), h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
