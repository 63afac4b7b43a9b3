package middleware

import (
	"context"

	"github.com/ceramica/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches route and method labels to the CPU samples taken while
// the request runs, so Pyroscope can break profiles down per endpoint.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelRoute: route,
			"method":                      c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
