package handler

import (
	"net/http"

	financeapp "github.com/ceramica/backend/internal/application/finance"
	"github.com/ceramica/backend/internal/domain/finance"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler serves one bank ledger. The USD and MXN books are mounted
// as separate handler instances over the same service.
type LedgerHandler struct {
	BaseHandler
	service  *financeapp.LedgerService
	currency shared.Currency
}

// NewLedgerHandler creates a handler bound to one currency book
func NewLedgerHandler(service *financeapp.LedgerService, currency shared.Currency) *LedgerHandler {
	return &LedgerHandler{service: service, currency: currency}
}

// AttachmentOwner is the attachment owner type of this book's entries
func (h *LedgerHandler) AttachmentOwner() records.OwnerType {
	if h.currency == shared.CurrencyUSD {
		return records.OwnerLedgerUSD
	}
	return records.OwnerLedgerMXN
}

// LedgerEntryRequest is the body for creating or replacing an entry
type LedgerEntryRequest struct {
	Date        string          `json:"date" binding:"required" example:"2026-10-01"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"1250.00"`
	EntryType   string          `json:"entry_type" binding:"required,oneof=income expense"`
	BankAccount string          `json:"bank_account" binding:"max=100"`
	Area        string          `json:"area" binding:"max=100"`
	Subarea     string          `json:"subarea" binding:"max=100"`
	Category    string          `json:"category" binding:"max=100"`
	Reference   string          `json:"reference" binding:"max=200"`
}

func (r LedgerEntryRequest) input() (finance.LedgerInput, error) {
	date, err := requiredDate("date", r.Date)
	if err != nil {
		return finance.LedgerInput{}, err
	}
	return finance.LedgerInput{
		Date:        date,
		Description: r.Description,
		Amount:      r.Amount,
		EntryType:   finance.EntryType(r.EntryType),
		BankAccount: r.BankAccount,
		Area:        r.Area,
		Subarea:     r.Subarea,
		Category:    r.Category,
		Reference:   r.Reference,
	}, nil
}

// FacturaRequest attaches a CFDI invoice to an entry
type FacturaRequest struct {
	FolioFiscal string          `json:"folio_fiscal" binding:"required" example:"6F9619FF-8B86-D011-B42D-00C04FC964FF"`
	RFCEmisor   string          `json:"rfc_emisor" binding:"required,max=13"`
	RFCReceptor string          `json:"rfc_receptor" binding:"required,max=13"`
	Total       decimal.Decimal `json:"total" swaggertype:"string"`
	IssuedAt    string          `json:"issued_at"`
	PDFURL      string          `json:"pdf_url" binding:"omitempty,url"`
	XMLURL      string          `json:"xml_url" binding:"omitempty,url"`
}

var ledgerFilterKeys = []string{
	"entry_type", "bank_account", "area", "subarea", "category", "date_from", "date_to",
}

// List godoc
// @Summary     List ledger entries
// @Tags        ledger
// @Param       entry_type query string false "income or expense"
// @Param       bank_account query string false "Bank account"
// @Param       date_from query string false "Inclusive start date"
// @Param       date_to query string false "Inclusive end date"
// @Success     200 {object} dto.Response
// @Router      /ledger-usd [get]
// @Router      /ledger-mxn [get]
func (h *LedgerHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c, ledgerFilterKeys...)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), h.currency, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Summary returns income, expense and balance per bank account for the
// entries matching the same filters as List
func (h *LedgerHandler) Summary(c *gin.Context) {
	filter, ok := h.ListFilter(c, ledgerFilterKeys...)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), h.currency, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *LedgerHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	entry, err := h.service.Get(c.Request.Context(), h.currency, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *LedgerHandler) Create(c *gin.Context) {
	var req LedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := h.service.Create(c.Request.Context(), h.currency, in, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

func (h *LedgerHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req LedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := h.service.Update(c.Request.Context(), h.currency, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

func (h *LedgerHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), h.currency, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *LedgerHandler) Facturas(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.Facturas(c.Request.Context(), h.currency, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddFactura links an invoice to the entry. Folio fiscal is unique across
// both books.
func (h *LedgerHandler) AddFactura(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req FacturaRequest
	if !h.BindJSON(c, &req) {
		return
	}
	issued, err := optionalDate("issued_at", req.IssuedAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	factura, err := h.service.AddFactura(c.Request.Context(), h.currency, id, finance.FacturaInput{
		FolioFiscal: req.FolioFiscal,
		RFCEmisor:   req.RFCEmisor,
		RFCReceptor: req.RFCReceptor,
		Total:       req.Total,
		IssuedAt:    issued,
		PDFURL:      req.PDFURL,
		XMLURL:      req.XMLURL,
	}, h.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, factura)
}

func (h *LedgerHandler) RemoveFactura(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	facturaID, ok := h.ParseID(c, "facturaId")
	if !ok {
		return
	}
	if err := h.service.RemoveFactura(c.Request.Context(), h.currency, id, facturaID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
