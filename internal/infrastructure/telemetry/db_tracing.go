package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracingConfig controls statement spans
type DBTracingConfig struct {
	DBName          string
	SlowQueryThresh time.Duration
}

// RegisterDBTracing installs the otelgorm plugin and a callback flagging slow
// statements on their span. Query variables never reach the span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(cfg.DBName),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}
	if cfg.SlowQueryThresh <= 0 {
		return nil
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, _ := v.(time.Time)
		elapsed := time.Since(start)
		if elapsed < cfg.SlowQueryThresh {
			return
		}
		span := trace.SpanFromContext(tx.Statement.Context)
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		)
		logger.Warn("slow query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", cfg.SlowQueryThresh),
		)
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("slow_query:before_create", before),
		cb.Create().After("gorm:create").Register("slow_query:after_create", after),
		cb.Query().Before("gorm:query").Register("slow_query:before_query", before),
		cb.Query().After("gorm:query").Register("slow_query:after_query", after),
		cb.Update().Before("gorm:update").Register("slow_query:before_update", before),
		cb.Update().After("gorm:update").Register("slow_query:after_update", after),
		cb.Delete().Before("gorm:delete").Register("slow_query:before_delete", before),
		cb.Delete().After("gorm:delete").Register("slow_query:after_delete", after),
	)
}
