package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// durationBuckets are the latency histogram boundaries in seconds
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics counts requests and records their latency per route pattern.
// Unmatched routes are reported as "unmatched" to keep cardinality bounded.
// A nil meter disables the middleware.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("HTTPMetrics: %w", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("HTTPMetrics: %w", err)
	}
	active, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests in flight"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("HTTPMetrics: %w", err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		active.Add(ctx, 1)
		defer active.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_class", StatusClass(status)),
		)
		requests.Add(ctx, 1, attrs, metric.WithAttributes(attribute.Int("http.status_code", status)))
		duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}, nil
}

// StatusClass groups a status code as "2xx", "4xx" and so on
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
