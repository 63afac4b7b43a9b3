package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ceramica/backend/internal/infrastructure/cache"
	"github.com/ceramica/backend/internal/infrastructure/logger"
	"github.com/ceramica/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the request header naming a client retry key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// IdempotencyConfig configures the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store cache.IdempotencyStore
	TTL   time.Duration
}

// Idempotency rejects a repeated Idempotency-Key with 409. Keys are scoped
// to the caller, method and path. A request that does not succeed releases
// its key so the client can retry with the same one. Requests without the
// header pass through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		scoped := idempotencyScope(GetJWTUserID(c), c.Request.Method, c.Request.URL.Path, key)
		ctx := c.Request.Context()
		claimed, err := cfg.Store.Claim(ctx, scoped, ttl)
		if err != nil {
			logger.GetGinLogger(c).Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already received")
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				logger.GetGinLogger(c).Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func idempotencyScope(userID, method, path, key string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return userID + ":" + method + ":" + path + ":" + key
}
