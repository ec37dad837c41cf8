package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

// Ensure TxRunner implements placement.TxRunner.
var _ placement.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
) error, opts ...placement.TxOption) error {
	return r.inTx(ctx, placement.ApplyTxOptions(opts), func(tx pgx.Tx) error {
		return fn(NewUnitRepository(tx), NewCellRepository(tx), NewPlacementRecordRepository(tx))
	})
}

// RunCargo agrega el repositorio de solicitudes (alta y baja de carga).
func (r *TxRunner) RunCargo(ctx context.Context, fn func(
	requests repository.CargoRequestRepository,
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
) error, opts ...placement.TxOption) error {
	return r.inTx(ctx, placement.ApplyTxOptions(opts), func(tx pgx.Tx) error {
		return fn(
			NewCargoRequestRepository(tx),
			NewUnitRepository(tx),
			NewCellRepository(tx),
			NewPlacementRecordRepository(tx),
		)
	})
}

func (r *TxRunner) inTx(ctx context.Context, o placement.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPlacements(ctx, tx, o.Exclusive); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// placementLockKey clave del advisory lock que ordena escrituras de ubicación frente a la reconciliación.
const placementLockKey int64 = 0x636172676f // "cargo"

// lockPlacements toma el advisory lock de la transacción: compartido para altas, ubicaciones y bajas,
// exclusivo para reconciliar. Se libera solo al terminar la tx.
func lockPlacements(ctx context.Context, tx pgx.Tx, exclusive bool) error {
	query := `SELECT pg_advisory_xact_lock_shared($1)`
	if exclusive {
		query = `SELECT pg_advisory_xact_lock($1)`
	}
	if _, err := tx.Exec(ctx, query, placementLockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}
