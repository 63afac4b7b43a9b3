package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedEngine(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	r := gin.New()
	r.Use(RequestID(), Tracing("ceramica-test"), SpanAttributes())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/produccion/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r, recorder
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	t.Run("health is not traced", func(t *testing.T) {
		r, recorder := newTracedEngine(t)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, recorder.Ended())
	})

	t.Run("span named after route with request id", func(t *testing.T) {
		r, recorder := newTracedEngine(t)
		req := httptest.NewRequest(http.MethodGet, "/produccion/42", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/produccion/:id")
		assert.Equal(t, spans[0].SpanContext().TraceID().String(), w.Header().Get(TraceIDHeader))
		v, ok := attr(spans[0], "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-1", v.AsString())
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		r, recorder := newTracedEngine(t)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}

func TestProfiling_PassesThrough(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		r := gin.New()
		r.Use(Profiling(enabled))
		r.GET("/kits", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kits", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	}
}
