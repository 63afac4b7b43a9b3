package handler

import (
	recordsapp "github.com/ceramica/backend/internal/application/records"
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler registers files against contacts, documents and ledger
// entries. The owner type is fixed per route; the owner id comes from the
// ":id" path parameter.
type AttachmentHandler struct {
	BaseHandler
	service *recordsapp.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(service *recordsapp.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// AttachmentRequest registers a file that is already stored
type AttachmentRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255" example:"factura-0921.pdf"`
	URL         string `json:"url" binding:"required,url,max=2000"`
	ContentType string `json:"content_type" binding:"max=100"`
	SizeBytes   int64  `json:"size_bytes" binding:"gte=0"`
	StorageKey  string `json:"storage_key" binding:"max=500"`
}

// PresignRequest asks for a direct upload URL
type PresignRequest struct {
	OwnerType   string `json:"owner_type" binding:"required,oneof=contact document ledger_usd ledger_mxn"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"max=100"`
}

// List returns the attachments of the owner in the path
func (h *AttachmentHandler) List(owner records.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		items, err := h.service.List(c.Request.Context(), owner, ownerID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, items)
	}
}

// Add registers an attachment on the owner in the path
func (h *AttachmentHandler) Add(owner records.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		var req AttachmentRequest
		if !h.BindJSON(c, &req) {
			return
		}
		att, err := h.service.Add(c.Request.Context(), owner, ownerID, records.AttachmentInput{
			FileName:    req.FileName,
			URL:         req.URL,
			ContentType: req.ContentType,
			SizeBytes:   req.SizeBytes,
			StorageKey:  req.StorageKey,
		}, h.UserID(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, att)
	}
}

// Remove deletes one attachment of the owner in the path
func (h *AttachmentHandler) Remove(owner records.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		id, ok := h.ParseID(c, "attachmentId")
		if !ok {
			return
		}
		if err := h.service.Remove(c.Request.Context(), owner, ownerID, id); err != nil {
			h.HandleError(c, err)
			return
		}
		h.NoContent(c)
	}
}

// Presign godoc
// @Summary     Get a presigned upload URL
// @Tags        uploads
// @Accept      json
// @Produce     json
// @Param       request body PresignRequest true "File to upload"
// @Success     200 {object} dto.Response{data=recordsapp.UploadTarget}
// @Failure     400 {object} dto.Response
// @Router      /uploads/presign [post]
func (h *AttachmentHandler) Presign(c *gin.Context) {
	var req PresignRequest
	if !h.BindJSON(c, &req) {
		return
	}
	target, err := h.service.Presign(c.Request.Context(), records.OwnerType(req.OwnerType), req.FileName, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, target)
}
