package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/ceramica/backend/internal/infrastructure/logger"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PingFunc checks that a dependency is reachable
type PingFunc func(ctx context.Context) error

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	database  PingFunc
	redis     PingFunc
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. redis may be nil when the
// server runs without it.
func NewSystemHandler(version string, database, redis PingFunc) *SystemHandler {
	return &SystemHandler{
		version:   version,
		startTime: time.Now(),
		database:  database,
		redis:     redis,
		timeout:   2 * time.Second,
	}
}

// HealthResponse reports dependency reachability
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-10-18T12:00:00Z"`
	Database string `json:"database" example:"ok"`
	Redis    string `json:"redis" example:"disabled"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports database and Redis reachability. Only a database failure makes the service unhealthy.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Database: "ok",
		Redis:    "disabled",
	}
	status := http.StatusOK
	reqLog := logger.GetGinLogger(c)

	if err := h.database(ctx); err != nil {
		reqLog.Warn("Health check failed", zap.String("dependency", "database"), zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis(ctx); err != nil {
			reqLog.Warn("Health check degraded", zap.String("dependency", "redis"), zap.Error(err))
			resp.Redis = "error"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}
	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Ceramica Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      "Ceramica Backend API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
