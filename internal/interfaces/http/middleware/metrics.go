package middleware

import (
	"strconv"
	"time"

	"github.com/erp/crm/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// httpMetrics holds the HTTP server instruments
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  *telemetry.Gauge
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	in := telemetry.NewInstruments(meter)
	m := &httpMetrics{
		requestTotal:    in.Counter("http_server_request_total", "Total number of HTTP requests", "{request}"),
		requestDuration: in.Histogram("http_server_request_duration_seconds", "HTTP request latency in seconds", "s", durationBuckets...),
		activeRequests:  in.Gauge("http_server_active_requests", "Number of in-flight HTTP requests", "{request}"),
	}
	return m, in.Err()
}

// HTTPMetrics records request count, latency and in-flight requests per
// route pattern. A nil meter disables the middleware.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		log.Warn("HTTP metrics disabled", zap.Error(err))
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.activeRequests.Add(ctx, 1)

		c.Next()

		m.activeRequests.Add(ctx, -1)
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), base...)
		m.requestTotal.Inc(ctx, append(base,
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
			attribute.String("http.status_class", statusClass(c.Writer.Status())),
		)...)
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "other"
}
