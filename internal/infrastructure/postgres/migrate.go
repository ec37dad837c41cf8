package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrator aplica las migraciones embebidas con goose sobre el pool de pgx.
type Migrator struct {
	pool *pgxpool.Pool
}

// NewMigrator construye el migrador.
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

// Up aplica todas las migraciones pendientes.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(ctx context.Context, dir string) error {
		db := stdlib.OpenDBFromPool(m.pool)
		defer db.Close()
		return goose.UpContext(ctx, db, dir)
	})
}

// Down revierte la última migración aplicada.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(ctx context.Context, dir string) error {
		db := stdlib.OpenDBFromPool(m.pool)
		defer db.Close()
		return goose.DownContext(ctx, db, dir)
	})
}

// Version devuelve la versión actual del esquema.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.run(ctx, func(ctx context.Context, _ string) error {
		db := stdlib.OpenDBFromPool(m.pool)
		defer db.Close()
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}

func (m *Migrator) run(ctx context.Context, fn func(ctx context.Context, dir string) error) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := fn(ctx, migrationsDir); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}
	return nil
}
