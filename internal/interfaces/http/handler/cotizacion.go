package handler

import (
	"net/http"

	financeapp "github.com/ceramica/backend/internal/application/finance"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CotizacionHandler serves the cash movement register
type CotizacionHandler struct {
	BaseHandler
	service *financeapp.CotizacionService
}

// NewCotizacionHandler creates a new CotizacionHandler
func NewCotizacionHandler(service *financeapp.CotizacionService) *CotizacionHandler {
	return &CotizacionHandler{service: service}
}

// CotizacionRequest is the body for creating or replacing a cash movement
type CotizacionRequest struct {
	Date         string          `json:"date" binding:"required"`
	Concept      string          `json:"concept" binding:"required,max=500"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency     string          `json:"currency" binding:"required,oneof=USD MXN"`
	MovementType string          `json:"movement_type" binding:"required,oneof=ingreso egreso"`
	Area         string          `json:"area" binding:"max=100"`
	Subarea      string          `json:"subarea" binding:"max=100"`
	Counterparty string          `json:"counterparty" binding:"max=200"`
	Notes        string          `json:"notes" binding:"max=5000"`
}

func (r CotizacionRequest) input() (finance.CotizacionInput, error) {
	date, err := requiredDate("date", r.Date)
	if err != nil {
		return finance.CotizacionInput{}, err
	}
	return finance.CotizacionInput{
		Date:         date,
		Concept:      r.Concept,
		Amount:       r.Amount,
		Currency:     shared.Currency(r.Currency),
		MovementType: finance.MovementType(r.MovementType),
		Area:         r.Area,
		Subarea:      r.Subarea,
		Counterparty: r.Counterparty,
		Notes:        r.Notes,
	}, nil
}

var cotizacionFilterKeys = []string{"currency", "movement_type", "area", "subarea", "date_from", "date_to"}

func (h *CotizacionHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, cotizacionFilterKeys...)
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

// Summary totals the matching movements per currency and direction
func (h *CotizacionHandler) Summary(c *gin.Context) {
	filter, ok := h.ListFilter(c, cotizacionFilterKeys...)
	if !ok {
		return
	}
	totals, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

func (h *CotizacionHandler) Get(c *gin.Context) {
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

func (h *CotizacionHandler) Create(c *gin.Context) {
	var req CotizacionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *CotizacionHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req CotizacionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *CotizacionHandler) Delete(c *gin.Context) {
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
