package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/erp/crm/internal/application/notification"
	pricingapp "github.com/erp/crm/internal/application/pricing"
	rfqapp "github.com/erp/crm/internal/application/rfq"
	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/infrastructure/auth"
	"github.com/erp/crm/internal/infrastructure/cache"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/event"
	"github.com/erp/crm/internal/infrastructure/export"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/infrastructure/printing"
	"github.com/erp/crm/internal/infrastructure/scheduler"
	"github.com/erp/crm/internal/infrastructure/storage"
	"github.com/erp/crm/internal/infrastructure/telemetry"
	"github.com/erp/crm/internal/interfaces/http/handler"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/erp/crm/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/erp/crm/docs"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

//	@title			CRM Backend API
//	@version		1.0
//	@description	Multi-tenant CRM core: currencies, pricing, RFQ and quotation workflow, sales analytics
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/erp/crm
//	@contact.email	support@erp.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	}
	bootLog := logger.New(logCfg)

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// With log export on, every entry also goes to the collector
	log := bootLog
	if core := providers.ZapCore(logger.ParseLevel(cfg.Log.Level)); core != nil {
		log = logger.New(logCfg, core)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CRM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			DBName:          cfg.Database.DBName,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	// PostgreSQL schemas come from cmd/migrate
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	rfqRepo := persistence.NewGormRFQRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	rateCache := cache.NewRateCache(ctx, cfg.Redis, cfg.Currency.CacheTTL, log)
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisCache, ok := rateCache.(*cache.RedisRateCache); ok {
		checks["redis"] = redisCache.Ping
		defer func() {
			_ = redisCache.Close()
		}()
	}

	for _, d := range currency.Defaults {
		if d.Home && d.Code.String() != cfg.Currency.HomeCode {
			log.Warn("Configured home currency differs from the seeded one",
				zap.String("configured", cfg.Currency.HomeCode),
				zap.String("seeded", d.Code.String()),
			)
		}
	}

	currencyService := currencyapp.NewService(currencyRepo, rateCache, nil, log)
	pricingService := pricingapp.NewService(currencyService.Converter())
	rfqService := rfqapp.NewRFQService(rfqRepo, companyRepo, productRepo, log)
	quotationService := rfqapp.NewQuotationService(quotationRepo, rfqRepo, productRepo, currencyService, log)
	salesService := salesapp.NewService(invoiceRepo, currencyService, currencyService.ReportingConverter(), log)
	salesService.SetExporter(export.NewInvoiceExporter())

	// Domain events: RFQ status follows its quotations, notices go to the log
	eventBus := event.NewInMemoryEventBus(log)
	statusHandler := rfqapp.NewRFQStatusHandler(rfqRepo, log)
	statusHandler.SetEventPublisher(eventBus)
	eventBus.Subscribe(statusHandler)
	eventBus.Subscribe(notification.NewHandler(notification.NewLogNotifier(log)))

	meter := providers.Meter(telemetry.MeterName)
	workflowMetrics, err := telemetry.NewWorkflowMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register workflow metrics", zap.Error(err))
	}
	eventBus.Subscribe(workflowMetrics)
	currencyService.SetConversionObserver(workflowMetrics)

	currencyService.SetEventPublisher(eventBus)
	rfqService.SetEventPublisher(eventBus)
	quotationService.SetEventPublisher(eventBus)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	if cfg.Scheduler.ExpiryEnabled {
		sweeper, err := scheduler.NewExpirySweeper(scheduler.ExpirySweeperConfig{
			Interval:   cfg.Scheduler.ExpiryInterval,
			BatchSize:  cfg.Scheduler.ExpiryBatchSize,
			MaxBatches: scheduler.DefaultExpirySweeperConfig().MaxBatches,
		}, quotationService, log)
		if err != nil {
			log.Fatal("Failed to configure quotation expiry", zap.Error(err))
		}
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start quotation expiry", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Warn("Quotation expiry sweeper did not stop in time", zap.Error(err))
			}
		}()
	}

	if cfg.Storage.Enabled() {
		objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Warn("Export bucket check failed", zap.String("bucket", objectStorage.Bucket()), zap.Error(err))
		}
		salesService.SetStorage(objectStorage)
		log.Info("Invoice exports are uploaded", zap.String("bucket", objectStorage.Bucket()))
	}

	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(printing.ConfigFromPrinting(cfg.Printing, log))
		defer func() {
			_ = chrome.Close()
		}()
		quotationRenderer, err := printing.NewQuotationRenderer(chrome)
		if err != nil {
			log.Fatal("Failed to load quotation template", zap.Error(err))
		}
		quotationService.SetRenderer(quotationRenderer)
		log.Info("Quotation PDF printing enabled")
	}

	adapter, err := auth.NewGormAdapter(db.DB)
	if err != nil {
		log.Fatal("Failed to initialize policy storage", zap.Error(err))
	}
	authorizer, err := auth.NewAuthorizer(adapter, log)
	if err != nil {
		log.Fatal("Failed to initialize authorizer", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.Options{
		Config:     cfg,
		Logger:     log,
		JWT:        auth.NewJWTService(cfg.JWT),
		Authorizer: authorizer,
		Meter:      meter,
		Handlers: router.Handlers{
			Currency:  handler.NewCurrencyHandler(currencyService),
			Pricing:   handler.NewPricingHandler(pricingService),
			RFQ:       handler.NewRFQHandler(rfqService),
			Quotation: handler.NewQuotationHandler(quotationService),
			Sales:     handler.NewSalesHandler(salesService),
			System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully",
		zap.Int64("event_handler_failures", eventBus.Failures()),
	)
}
