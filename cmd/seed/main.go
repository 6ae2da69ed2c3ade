package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/erp/crm/internal/infrastructure/auth"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	var (
		tenant   string
		recreate bool
		role     string
		username string
		logLevel string
	)
	flag.StringVar(&tenant, "tenant", "", "Tenant ID to seed (required)")
	flag.BoolVar(&recreate, "recreate", false, "Reset existing default currencies to their seeded rates")
	flag.StringVar(&role, "token", "", "Also print an access token for this role (admin, sales, product)")
	flag.StringVar(&username, "username", "seed", "Username carried by the printed token")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
	defer func() {
		_ = log.Sync()
	}()

	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Usage: seed -tenant <uuid> [-recreate] [-token <role>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}

	service := currencyapp.NewService(persistence.NewGormCurrencyRepository(db.DB), nil, nil, log)
	result, err := service.SeedDefaults(context.Background(), tenantID, recreate)
	if err != nil {
		log.Fatal("Failed to seed currencies", zap.Stringer("tenant_id", tenantID), zap.Error(err))
	}
	log.Info("Currencies seeded",
		zap.Stringer("tenant_id", tenantID),
		zap.Strings("created", result.Created),
		zap.Strings("reset", result.Reset),
		zap.Strings("skipped", result.Skipped),
	)

	if role == "" {
		return
	}
	r := auth.Role(strings.ToLower(role))
	if !r.IsValid() {
		log.Fatal("Unknown role", zap.String("role", role))
	}
	token, expiresAt, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   uuid.New(),
		Username: username,
		Role:     r,
	})
	if err != nil {
		log.Fatal("Failed to mint token", zap.Error(err))
	}
	log.Info("Access token minted", zap.String("role", string(r)), zap.Time("expires_at", expiresAt))
	fmt.Println(token)
}
