// Package handler implements the HTTP endpoints of the API. Handlers bind
// and validate requests, call one application service and translate the
// result or domain error into the JSON envelope.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/logger"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/ceramica/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError converts an error into a response. Domain errors carry their
// own status; anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}
	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("request failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds and validates the body into obj. On failure the response
// is written and false is returned.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters into obj
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", middleware.GetRequestID(c), details))
		return
	}
	var maxErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is required")
	case errors.As(err, &syntaxErr):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	case errors.As(err, &typeErr):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Field "+typeErr.Field+" has the wrong type")
	default:
		h.BadRequest(c, err.Error())
	}
}

// ParseID parses the named path parameter as a UUID, answering 400 otherwise
func (h *BaseHandler) ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+param+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// ListFilter reads paging, search and ordering plus the given filter keys
// from the query string. Keys without a value are skipped.
func (h *BaseHandler) ListFilter(c *gin.Context, keys ...string) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if !h.BindQuery(c, &req) {
		return shared.Filter{}, false
	}
	f := req.Filter()
	for _, key := range keys {
		f = f.With(key, strings.TrimSpace(c.Query(key)))
	}
	return f, true
}

// UserID returns the authenticated caller, or nil
func (h *BaseHandler) UserID(c *gin.Context) *uuid.UUID {
	id, ok := middleware.GetUserUUID(c)
	if !ok {
		return nil
	}
	return &id
}

// RequireUser returns the authenticated caller or answers 401
func (h *BaseHandler) RequireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserUUID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// parseDateTime accepts RFC3339, a bare date or a date with time
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// optionalDate parses an optional date field. Empty means nil.
func optionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := parseDateTime(s)
	if err != nil {
		return nil, shared.InvalidInput("%s must be a date (YYYY-MM-DD or RFC3339)", field)
	}
	return &t, nil
}

// requiredDate parses a mandatory date field
func requiredDate(field, s string) (time.Time, error) {
	t, err := optionalDate(field, s)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, shared.InvalidInput("%s is required", field)
	}
	return *t, nil
}

// optionalUUID parses an optional UUID field. Empty means nil.
func optionalUUID(field, s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, shared.InvalidInput("%s must be a UUID", field)
	}
	return &id, nil
}

// boolQuery reads a boolean query parameter; ok is false when absent
func boolQuery(c *gin.Context, key string) (value, ok bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return b, true
}
