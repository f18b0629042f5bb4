package resources

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	reqs    metric.Int64Counter
	latency metric.Float64Histogram
}

func NewHTTPMetrics(name string) *HTTPMetrics {
	meter := otel.Meter(name)

	reqs, _ := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("HTTP requests"),
	)
	latency, _ := meter.Float64Histogram(
		"http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)

	return &HTTPMetrics{reqs: reqs, latency: latency}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()

		attrs := []attribute.KeyValue{
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
			attribute.Int("http.status_code", status),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		}

		m.reqs.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
		m.latency.Record(
			c.Request.Context(),
			float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(attrs...),
		)
	}
}

// ConnMetrics counts connections served by the command protocol listener.
type ConnMetrics struct {
	conns   metric.Int64Counter
	active  metric.Int64UpDownCounter
	latency metric.Float64Histogram
}

func NewConnMetrics(name string) *ConnMetrics {
	meter := otel.Meter(name)

	conns, _ := meter.Int64Counter(
		"calendar.command.connections",
		metric.WithDescription("Command protocol connections accepted"),
	)
	active, _ := meter.Int64UpDownCounter(
		"calendar.command.connections.active",
		metric.WithDescription("Command protocol connections in flight"),
	)
	latency, _ := meter.Float64Histogram(
		"calendar.command.duration.ms",
		metric.WithDescription("Command protocol connection duration in milliseconds"),
	)

	return &ConnMetrics{conns: conns, active: active, latency: latency}
}

// Track records an accepted connection and returns the function that closes
// the measurement.
func (m *ConnMetrics) Track(ctx context.Context) func() {
	start := time.Now()

	m.conns.Add(ctx, 1)
	m.active.Add(ctx, 1)

	return func() {
		m.active.Add(ctx, -1)
		m.latency.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
}
