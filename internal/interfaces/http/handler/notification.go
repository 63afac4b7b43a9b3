package handler

import (
	"net/http"

	notificationapp "github.com/ceramica/backend/internal/application/notification"
	"github.com/ceramica/backend/internal/domain/notification"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler serves the caller's inbox
type NotificationHandler struct {
	BaseHandler
	service *notificationapp.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notificationapp.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// SendNotificationRequest is an admin-authored message to one user
type SendNotificationRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	Type    string `json:"type" binding:"omitempty,oneof=task_assigned task_due stock_low order system"`
	Title   string `json:"title" binding:"required,max=200"`
	Message string `json:"message" binding:"max=2000"`
	Link    string `json:"link" binding:"max=500"`
}

// List godoc
// @Summary     List my notifications
// @Tags        notifications
// @Param       unread query bool false "Only unread notifications"
// @Param       type query string false "Notification type"
// @Success     200 {object} dto.Response
// @Security    BearerAuth
// @Router      /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c, "type")
	if !ok {
		return
	}
	if unread, set := boolQuery(c, "unread"); set {
		filter = filter.With("read", !unread)
	}
	page, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Send delivers a notification to any user. Admin only.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req SendNotificationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.Send(c.Request.Context(), notificationapp.SendInput{
		UserID:  uuid.MustParse(req.UserID),
		Type:    notification.Type(req.Type),
		Title:   req.Title,
		Message: req.Message,
		Link:    req.Link,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}
