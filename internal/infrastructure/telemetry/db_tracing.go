package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin and a callback that marks
// slow queries and errors on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.SlowQueryThresh
	if thresh == 0 {
		thresh = 200 * time.Millisecond
	}
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSpan(tx, thresh) }

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("timing:before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("timing:after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("timing:before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("timing:after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("timing:before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("timing:after_update", after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("timing:before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("timing:after_delete", after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("timing:before_raw", before); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("timing:after_raw", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", thresh),
	)
	return nil
}

func markSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
