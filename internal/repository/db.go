package repository

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/config"
)

//go:embed schema.sql
var schema string

// DB owns the pgx pool shared by the account and audit repositories
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB connects to Postgres, retrying with a linear backoff while the
// database comes up. Cancelling ctx stops the retries.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := newPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := connect(ctx, poolConfig)
		if err == nil {
			slog.Info("Database connected",
				slog.String("host", cfg.Host),
				slog.String("database", cfg.Name),
				slog.Int("attempt", attempt))
			return &DB{Pool: pool}, nil
		}
		lastErr = err
		slog.Warn("Database connection failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err))

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay(attempt)):
		}
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", attempts, lastErr)
}

func newPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second
	if cfg.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}
	return poolConfig, nil
}

// connect opens a pool and pings it; the pool is closed again on failure
func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func retryDelay(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Migrate creates the account and audit tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	var ok int
	return db.Pool.QueryRow(ctx, "SELECT 1").Scan(&ok)
}
