package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limit int64) *gin.Engine {
		r := gin.New()
		r.Use(BodyLimit(limit))
		r.POST("/produccion", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.String(http.StatusBadRequest, "body too large")
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return r
	}

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"within limit", 1024, `{"producto":"taza"}`, 19, http.StatusOK, "ok"},
		{"declared length over limit", 100, strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"streamed body over limit", 50, strings.Repeat("x", 100), -1, http.StatusBadRequest, "body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/produccion", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			newRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
