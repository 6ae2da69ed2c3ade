package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Pyroscope label names
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelTenantID   = "tenant_id"
)

// Profiling tags CPU samples of a request with its route and tenant.
// It must run after JWTAuthMiddleware for tenant_id to be present.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(profilingLabels(c, route)...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context, route string) []string {
	labels := []string{
		ProfilingLabelMethod, c.Request.Method,
		ProfilingLabelRoute, route,
	}
	if controller := controllerFromRoute(route); controller != "" {
		labels = append(labels, ProfilingLabelController, controller)
	}
	if tenantID := GetJWTTenantID(c); tenantID != "" {
		labels = append(labels, ProfilingLabelTenantID, tenantID)
	}
	return labels
}

// controllerFromRoute returns the first resource segment:
// "/api/v1/rfqs/:id/submit" gives "rfqs".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
