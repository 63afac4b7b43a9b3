package handler

import (
	"net/http"
	"time"

	"github.com/ceramica/backend/internal/infrastructure/auth"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/ceramica/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes the caller's identity and token revocation. Tokens
// are issued elsewhere.
type AuthHandler struct {
	BaseHandler
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{blacklist: blacklist, logger: logger}
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me godoc
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Success     200 {object} dto.Response{data=MeResponse}
// @Failure     401 {object} dto.Response
// @Security    BearerAuth
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, MeResponse{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		Role:      claims.Role,
		IsAdmin:   claims.IsAdmin(),
		ExpiresAt: claims.GetExpiresAtTime(),
	})
}

// Logout revokes the presented token for the rest of its lifetime
//
// @Summary     Revoke the current token
// @Tags        auth
// @Success     204
// @Failure     401 {object} dto.Response
// @Security    BearerAuth
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if h.blacklist == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Token revocation is not configured")
		return
	}
	if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, claims.GetRemainingTTL()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.logger.Info("token revoked", zap.String("user_id", claims.UserID), zap.String("jti", claims.ID))
	h.NoContent(c)
}
