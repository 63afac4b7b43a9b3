package handler

import (
	"fmt"
	"net/http"

	ventasapp "github.com/ceramica/backend/internal/application/ventas"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/domain/ventas"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// QuotationHandler serves ventas quotations
type QuotationHandler struct {
	BaseHandler
	service *ventasapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(service *ventasapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// LineRequest is one product line of a quotation or pedido
type LineRequest struct {
	Producto    string          `json:"producto" binding:"required,max=200"`
	Color       string          `json:"color" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=500"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"185.00"`
}

func lineInputs(lines []LineRequest) []ventas.LineInput {
	out := make([]ventas.LineInput, len(lines))
	for i, l := range lines {
		out[i] = ventas.LineInput(l)
	}
	return out
}

// QuotationRequest is the body for creating or replacing a quotation
type QuotationRequest struct {
	ClientName string          `json:"client_name" binding:"required,max=200"`
	ContactID  string          `json:"contact_id" binding:"omitempty,uuid"`
	ValidUntil string          `json:"valid_until"`
	Currency   string          `json:"currency" binding:"omitempty,oneof=USD MXN"`
	TaxRate    decimal.Decimal `json:"tax_rate" swaggertype:"string" example:"0.16"`
	Notes      string          `json:"notes" binding:"max=5000"`
	Items      []LineRequest   `json:"items" binding:"required,min=1,dive"`
}

func (r QuotationRequest) input() (ventas.QuotationInput, error) {
	contact, err := optionalUUID("contact_id", r.ContactID)
	if err != nil {
		return ventas.QuotationInput{}, err
	}
	valid, err := optionalDate("valid_until", r.ValidUntil)
	if err != nil {
		return ventas.QuotationInput{}, err
	}
	return ventas.QuotationInput{
		ClientName: r.ClientName,
		ContactID:  contact,
		ValidUntil: valid,
		Currency:   shared.Currency(r.Currency),
		TaxRate:    r.TaxRate,
		Notes:      r.Notes,
		Items:      lineInputs(r.Items),
	}, nil
}

// List godoc
// @Summary     List quotations
// @Tags        ventas
// @Param       status query string false "draft, sent, accepted, rejected, expired or converted"
// @Param       contact_id query string false "Contact UUID"
// @Success     200 {object} dto.Response
// @Router      /ventas/quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, "status", "contact_id", "currency",
		"valid_until_from", "valid_until_to", "created_at_from", "created_at_to")
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

func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	q, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Create adds a draft quotation with the next COT folio of the year
func (h *QuotationHandler) Create(c *gin.Context) {
	var req QuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	q, err := h.service.Create(c.Request.Context(), in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

func (h *QuotationHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req QuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	q, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

func (h *QuotationHandler) Delete(c *gin.Context) {
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

func (h *QuotationHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.service.ChangeStatus(c.Request.Context(), id, ventas.QuotationStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Convert turns an accepted quotation into a pending pedido
func (h *QuotationHandler) Convert(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	pedido, err := h.service.Convert(c.Request.Context(), id, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pedido)
}

// PDF godoc
// @Summary     Download a quotation as PDF
// @Tags        ventas
// @Produce     application/pdf
// @Param       id path string true "Quotation ID"
// @Success     200 {file} binary
// @Failure     404 {object} dto.Response
// @Router      /ventas/quotations/{id}/pdf [get]
func (h *QuotationHandler) PDF(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.service.PDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
