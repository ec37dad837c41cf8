package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"

	"github.com/jhoicas/cargo-placement/pkg/config"
)

const (
	defaultMaxConns   = 25
	connectAttempts   = 5
	connectRetryDelay = 2 * time.Second
	statementTimeout  = "15s"
)

// NewPool crea el pool de conexiones con DATABASE_URL o el DSN armado desde DB_HOST, DB_PORT, etc.
// Reintenta el ping unos segundos mientras la base arranca.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	rt := poolConfig.ConnConfig.RuntimeParams
	if rt["application_name"] == "" {
		rt["application_name"] = "cargo-placement"
	}
	// Una ubicación bloqueada por un lock de fila no debe colgar la petición HTTP.
	rt["statement_timeout"] = statementTimeout

	// NUMERIC -> shopspring/decimal (porcentaje de ocupación calculado en SQL).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pingWithRetry(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func pingWithRetry(ctx context.Context, pool *pgxpool.Pool) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping DB: %w", ctx.Err())
		case <-time.After(connectRetryDelay):
		}
	}
	return fmt.Errorf("ping DB tras %d intentos: %w", connectAttempts, err)
}
