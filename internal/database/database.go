// Package database owns the PostgreSQL connection pool and the ORM handle
// built on top of it.
//
// Both share one pgx pool: raw pgx is used for bootstrap and health checks,
// gorm for request-scoped sessions.
package database

import (
	"context"
	"fmt"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/deppfellow/articles/internal/config"
	loggerConfig "github.com/deppfellow/articles/internal/logger"
)

// DatabasePingTimeout bounds the startup ping.
const DatabasePingTimeout = 10 * time.Second

// Database is the shared pool plus the ORM bound to it.
type Database struct {
	Pool *pgxpool.Pool
	ORM  *gorm.DB
	log  *zerolog.Logger
}

// multiTracer fans pgx trace callbacks out to several tracers, since
// ConnConfig only has room for one.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range mt.tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range mt.tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// queryTracer picks the pgx tracer for the environment: New Relic when the
// agent runs, verbose SQL logging in local, both chained when both apply.
func queryTracer(env string, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) pgx.QueryTracer {
	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if env == "local" {
		level := logger.GetLevel()
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(level)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(level),
		})
	}

	switch len(tracers) {
	case 0:
		return nil
	case 1:
		return tracers[0]
	default:
		return &multiTracer{tracers: tracers}
	}
}

// poolConfig parses the DSN and applies pool sizing from cfg.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(cfg.MaxIdleConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second

	return pgxPoolConfig, nil
}

// New connects to PostgreSQL, verifies the connection and opens the ORM on
// the same pool.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := poolConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	if tracer := queryTracer(cfg.Primary.Env, logger, loggerService); tracer != nil {
		pgxPoolConfig.ConnConfig.Tracer = tracer
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	orm, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		Logger:                 loggerConfig.NewGormLogger(*logger, cfg.Observability.Logging.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open orm: %w", err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Msg("connected to the database")

	return &Database{
		Pool: pool,
		ORM:  orm,
		log:  logger,
	}, nil
}

// Ping checks the pool can reach the server.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases the ORM's sql.DB wrapper and then the pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")

	if db.ORM != nil {
		if sqlDB, err := db.ORM.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	db.Pool.Close()
	return nil
}
