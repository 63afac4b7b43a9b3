package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	})

	t.Run("falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestWithRequestIDAndUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, l := WithUserID(ctx, FromContext(ctx), "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))
	assert.Empty(t, GetUserID(context.Background()))

	l.Info("hello")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		assert.Same(t, base, WithTraceContext(context.Background(), base))
	})

	t.Run("adds trace and span ids", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		L(WithContext(ctx, base)).Info("traced")

		entry := recorded.All()[recorded.Len()-1]
		assert.Equal(t, span.SpanContext().TraceID().String(), entry.ContextMap()["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), entry.ContextMap()["span_id"])
	})
}
