package handler

import (
	"net/http"

	ventasapp "github.com/ceramica/backend/internal/application/ventas"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PedidoHandler serves ventas pedidos and their stock allocations
type PedidoHandler struct {
	BaseHandler
	service *ventasapp.PedidoService
}

// NewPedidoHandler creates a new PedidoHandler
func NewPedidoHandler(service *ventasapp.PedidoService) *PedidoHandler {
	return &PedidoHandler{service: service}
}

// PedidoRequest is the body for creating or replacing a pedido
type PedidoRequest struct {
	ClientName   string        `json:"client_name" binding:"required,max=200"`
	ContactID    string        `json:"contact_id" binding:"omitempty,uuid"`
	QuotationID  string        `json:"quotation_id" binding:"omitempty,uuid"`
	DeliveryDate string        `json:"delivery_date"`
	Notes        string        `json:"notes" binding:"max=5000"`
	Items        []LineRequest `json:"items" binding:"required,min=1,dive"`
}

func (r PedidoRequest) input() (ventas.PedidoInput, error) {
	contact, err := optionalUUID("contact_id", r.ContactID)
	if err != nil {
		return ventas.PedidoInput{}, err
	}
	quotation, err := optionalUUID("quotation_id", r.QuotationID)
	if err != nil {
		return ventas.PedidoInput{}, err
	}
	delivery, err := optionalDate("delivery_date", r.DeliveryDate)
	if err != nil {
		return ventas.PedidoInput{}, err
	}
	return ventas.PedidoInput{
		ClientName:   r.ClientName,
		ContactID:    contact,
		QuotationID:  quotation,
		DeliveryDate: delivery,
		Notes:        r.Notes,
		Items:        lineInputs(r.Items),
	}, nil
}

// ExplicitAllocationRequest pins part of an item to a specific row
type ExplicitAllocationRequest struct {
	ItemID      string `json:"item_id" binding:"required,uuid"`
	InventoryID string `json:"inventory_id" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

// ConfirmRequest is the optional body of the confirm endpoint
type ConfirmRequest struct {
	Allocations []ExplicitAllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// AllocateRequest reserves pieces of one row for an item
type AllocateRequest struct {
	InventoryID string `json:"inventory_id" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

func (h *PedidoHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "contact_id", "quotation_id",
		"delivery_date_from", "delivery_date_to", "created_at_from", "created_at_to")
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

// Get returns the pedido with the allocated quantity of every item
func (h *PedidoHandler) Get(c *gin.Context) {
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

func (h *PedidoHandler) Create(c *gin.Context) {
	var req PedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

func (h *PedidoHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req PedidoRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *PedidoHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, h.UserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Confirm godoc
// @Summary     Confirm a pedido
// @Description Explicit allocations are applied first; the rest of every item is reserved from matching rows. Any shortage rejects the whole confirmation.
// @Tags        ventas
// @Param       id path string true "Pedido ID"
// @Param       Idempotency-Key header string false "Replay protection key"
// @Param       request body ConfirmRequest false "Explicit allocations"
// @Success     200 {object} dto.Response
// @Failure     409 {object} dto.Response
// @Router      /ventas/pedidos/{id}/confirm [post]
func (h *PedidoHandler) Confirm(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req ConfirmRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	explicit := make([]ventasapp.ExplicitAllocation, len(req.Allocations))
	for i, a := range req.Allocations {
		explicit[i] = ventasapp.ExplicitAllocation{
			ItemID:      uuid.MustParse(a.ItemID),
			InventoryID: uuid.MustParse(a.InventoryID),
			Quantity:    a.Quantity,
		}
	}
	p, err := h.service.Confirm(c.Request.Context(), id, explicit, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Deliver consumes every active allocation of a confirmed pedido
func (h *PedidoHandler) Deliver(c *gin.Context) {
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

func (h *PedidoHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Cancel(c.Request.Context(), id, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ChangeStatus dispatches to confirm, deliver, cancel or reopen
func (h *PedidoHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.ChangeStatus(c.Request.Context(), id, ventas.PedidoStatus(req.Status), h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

func (h *PedidoHandler) Allocations(c *gin.Context) {
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

// Allocate reserves pieces of a chosen row for one item
func (h *PedidoHandler) Allocate(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	alloc, err := h.service.Allocate(c.Request.Context(), id, itemID, uuid.MustParse(req.InventoryID), req.Quantity, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, alloc)
}

func (h *PedidoHandler) ReleaseAllocation(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	allocID, ok := h.ParseID(c, "allocationId")
	if !ok {
		return
	}
	if err := h.service.ReleaseAllocation(c.Request.Context(), id, allocID, h.UserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
