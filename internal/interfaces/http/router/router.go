// Package router assembles the gin engine of the CRM API.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Guard builds the permission check placed in front of a route
type Guard func(object, action string) gin.HandlerFunc

// Route describes one registered API route. Routes without an Action only
// require authentication.
type Route struct {
	Method string
	Path   string
	Object string
	Action string

	handler gin.HandlerFunc
}

// Gated reports whether the route checks a permission
func (r Route) Gated() bool {
	return r.Action != ""
}

// Router mounts resource groups under a versioned API group
type Router struct {
	engine     *gin.Engine
	apiVersion string
	guard      Guard
	middleware []gin.HandlerFunc
	groups     []*ResourceGroup
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGuard sets the permission check used for gated routes
func WithGuard(guard Guard) RouterOption {
	return func(r *Router) {
		r.guard = guard
	}
}

// NewRouter creates a Router. Without a guard gated routes are served
// to any authenticated caller.
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware applied to every route of the API group
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register adds resource groups
func (r *Router) Register(groups ...*ResourceGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Basepath returns the API prefix, e.g. /api/v1
func (r *Router) Basepath() string {
	return "/api/" + r.apiVersion
}

// Setup registers every route with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.Basepath())
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, g := range r.groups {
		g.mount(api, r.guard)
	}
}

// Routes lists the registered routes with their full paths
func (r *Router) Routes() []Route {
	var routes []Route
	for _, g := range r.groups {
		routes = append(routes, g.collect(r.Basepath())...)
	}
	return routes
}

// ResourceGroup collects the routes of one API resource. Routes inherit the
// group's policy object unless they name their own.
type ResourceGroup struct {
	name       string
	prefix     string
	object     string
	routes     []Route
	subgroups  []*ResourceGroup
	middleware []gin.HandlerFunc
}

// NewResourceGroup creates a group for routes under prefix guarded on object
func NewResourceGroup(name, prefix, object string) *ResourceGroup {
	return &ResourceGroup{name: name, prefix: prefix, object: object}
}

// Name returns the group name
func (g *ResourceGroup) Name() string {
	return g.name
}

// Prefix returns the group prefix
func (g *ResourceGroup) Prefix() string {
	return g.prefix
}

// Use adds middleware to this group
func (g *ResourceGroup) Use(middleware ...gin.HandlerFunc) *ResourceGroup {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// GET registers a GET route requiring action on the group object
func (g *ResourceGroup) GET(relativePath, action string, h gin.HandlerFunc) *ResourceGroup {
	return g.Handle(http.MethodGet, relativePath, g.object, action, h)
}

// POST registers a POST route requiring action on the group object
func (g *ResourceGroup) POST(relativePath, action string, h gin.HandlerFunc) *ResourceGroup {
	return g.Handle(http.MethodPost, relativePath, g.object, action, h)
}

// PUT registers a PUT route requiring action on the group object
func (g *ResourceGroup) PUT(relativePath, action string, h gin.HandlerFunc) *ResourceGroup {
	return g.Handle(http.MethodPut, relativePath, g.object, action, h)
}

// Open registers a route that only requires authentication
func (g *ResourceGroup) Open(method, relativePath string, h gin.HandlerFunc) *ResourceGroup {
	return g.Handle(method, relativePath, "", "", h)
}

// Handle registers a route requiring action on object
func (g *ResourceGroup) Handle(method, relativePath, object, action string, h gin.HandlerFunc) *ResourceGroup {
	g.routes = append(g.routes, Route{
		Method:  method,
		Path:    relativePath,
		Object:  object,
		Action:  action,
		handler: h,
	})
	return g
}

// Group creates a nested group. An empty object inherits this group's.
func (g *ResourceGroup) Group(name, prefix, object string) *ResourceGroup {
	if object == "" {
		object = g.object
	}
	sub := NewResourceGroup(name, prefix, object)
	g.subgroups = append(g.subgroups, sub)
	return sub
}

// RegisterRoutes mounts the group on rg without permission checks
func (g *ResourceGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g.mount(rg, nil)
}

func (g *ResourceGroup) mount(rg *gin.RouterGroup, guard Guard) {
	group := rg.Group(g.prefix)
	if len(g.middleware) > 0 {
		group.Use(g.middleware...)
	}
	for _, route := range g.routes {
		handlers := make([]gin.HandlerFunc, 0, 2)
		if route.Gated() && guard != nil {
			handlers = append(handlers, guard(route.Object, route.Action))
		}
		handlers = append(handlers, route.handler)
		group.Handle(route.Method, route.Path, handlers...)
	}
	for _, sub := range g.subgroups {
		sub.mount(group, guard)
	}
}

func (g *ResourceGroup) collect(base string) []Route {
	base = joinPath(base, g.prefix)
	routes := make([]Route, 0, len(g.routes))
	for _, route := range g.routes {
		route.Path = joinPath(base, route.Path)
		routes = append(routes, route)
	}
	for _, sub := range g.subgroups {
		routes = append(routes, sub.collect(base)...)
	}
	return routes
}

func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return path.Join(base, rel)
}
