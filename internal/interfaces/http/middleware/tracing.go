// Package middleware provides the HTTP middleware chain of the CRM API.
package middleware

import (
	"net/http"

	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns OpenTelemetry tracing middleware. Spans are named
// after the route pattern and 5xx responses are marked as errors.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	base := otelgin.Middleware(cfg.ServiceName)
	return func(c *gin.Context) {
		base(c)
	}
}

// TracingAttributeInjector adds request_id, tenant_id, user_id and role to
// the active span. It must run after JWTAuthMiddleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := c.GetString(logger.GinRequestIDKey); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := GetJWTTenantID(c); id != "" {
				span.SetAttributes(attribute.String("tenant_id", id))
			}
			if id := GetJWTUserID(c); id != "" {
				span.SetAttributes(attribute.String("user_id", id))
			}
			if role := GetJWTRole(c); role != "" {
				span.SetAttributes(attribute.String("role", string(role)))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks the span of a failed request with the error status
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
