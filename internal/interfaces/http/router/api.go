package router

import (
	"net/http"

	"github.com/erp/crm/internal/infrastructure/auth"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served by the engine
type Handlers struct {
	Currency  *handler.CurrencyHandler
	Pricing   *handler.PricingHandler
	RFQ       *handler.RFQHandler
	Quotation *handler.QuotationHandler
	Sales     *handler.SalesHandler
	System    *handler.SystemHandler
}

// Options wire the engine. Meter may be nil.
type Options struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWT        *auth.JWTService
	Authorizer middleware.RoleAuthorizer
	Meter      metric.Meter
	Handlers   Handlers
}

// NewEngine builds the gin engine with the global middleware chain, the
// public endpoints and the authenticated /api/v1 routes.
func NewEngine(opts Options) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request id, logging, panics, browser headers, size guard, telemetry
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.HTTP)))
	engine.Use(middleware.Secure(cfg.App.IsProduction()))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter, log))

	h := opts.Handlers
	engine.GET("/health", h.System.Health)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jwtConfig := middleware.DefaultJWTConfig(opts.JWT)
	jwtConfig.Logger = log

	r := NewRouter(engine,
		WithAPIVersion("v1"),
		WithGuard(func(object, action string) gin.HandlerFunc {
			return middleware.Authorize(opts.Authorizer, object, action)
		}),
	)
	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
	)
	r.Register(APIGroups(opts.Handlers)...)
	r.Setup()
	log.Debug("API routes registered", zap.Int("routes", len(r.Routes())))
	return engine
}

// APIGroups declares the authenticated API: every route with the policy
// object and action a caller's role must hold.
func APIGroups(h Handlers) []*ResourceGroup {
	system := NewResourceGroup("system", "/system", "")
	system.Open(http.MethodGet, "/ping", h.System.Ping)

	currencies := NewResourceGroup("currency", "/currencies", auth.ObjectCurrency)
	currencies.GET("", auth.ActionView, h.Currency.ListActive)
	currencies.POST("/convert", auth.ActionConvert, h.Currency.Convert)
	currencies.PUT("/:code/rate", auth.ActionManage, h.Currency.UpdateRate)
	currencies.POST("/:code/deactivate", auth.ActionManage, h.Currency.Deactivate)

	pricing := NewResourceGroup("pricing", "/pricing", auth.ObjectPricing)
	pricing.POST("/breakdown", auth.ActionCalculate, h.Pricing.Breakdown)

	rfqs := NewResourceGroup("rfq", "/rfqs", auth.ObjectRFQ)
	rfqs.POST("", auth.ActionCreate, h.RFQ.Create)
	rfqs.GET("/pending", auth.ActionQueue, h.RFQ.Pending)
	rfqs.GET("/:id", auth.ActionView, h.RFQ.GetByID)
	rfqs.POST("/:id/items", auth.ActionUpdate, h.RFQ.AddItem)
	rfqs.POST("/:id/submit", auth.ActionSubmit, h.RFQ.Submit)
	rfqs.POST("/:id/start", auth.ActionStart, h.RFQ.Start)
	rfqs.POST("/:id/close", auth.ActionClose, h.RFQ.Close)
	rfqs.POST("/:id/cancel", auth.ActionCancel, h.RFQ.Cancel)
	rfqs.Handle(http.MethodGet, "/:id/quotations", auth.ObjectQuotation, auth.ActionView, h.Quotation.ListByRFQ)

	quotations := NewResourceGroup("quotation", "/quotations", auth.ObjectQuotation)
	quotations.POST("", auth.ActionCreate, h.Quotation.Create)
	quotations.GET("/:id", auth.ActionView, h.Quotation.GetByID)
	quotations.POST("/:id/items", auth.ActionUpdate, h.Quotation.AddItem)
	quotations.POST("/:id/submit", auth.ActionSubmit, h.Quotation.Submit)
	quotations.POST("/:id/accept", auth.ActionDecide, h.Quotation.Accept)
	quotations.POST("/:id/reject", auth.ActionDecide, h.Quotation.Reject)
	quotations.POST("/:id/expire", auth.ActionExpire, h.Quotation.Expire)
	quotations.GET("/:id/pdf", auth.ActionPrint, h.Quotation.PDF)

	sales := NewResourceGroup("sales", "", auth.ObjectSales)
	sales.GET("/companies/:id/sales-summary", auth.ActionView, h.Sales.CompanySummary)
	invoices := sales.Group("invoice", "/invoices", auth.ObjectInvoice)
	invoices.GET("/stats", auth.ActionView, h.Sales.InvoiceStats)
	invoices.GET("/export", auth.ActionExport, h.Sales.ExportInvoices)

	return []*ResourceGroup{system, currencies, pricing, rfqs, quotations, sales}
}
