package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ repository.CellRepository = (*CellRepo)(nil)

// CellRepo índice de ocupación. Las filas se crean perezosamente en el primer Occupy.
type CellRepo struct {
	db Querier
}

// NewCellRepository construye el adaptador.
func NewCellRepository(db Querier) *CellRepo {
	return &CellRepo{db: db}
}

// Get devuelve la celda o (nil, nil) si nunca se ocupó.
func (r *CellRepo) Get(ctx context.Context, addr entity.CellAddress) (*entity.Cell, error) {
	c, err := scanCell(r.db.QueryRow(ctx, `
		SELECT warehouse_id, block, shelf, cell, occupied_by, updated_at
		FROM cells WHERE warehouse_id = $1 AND block = $2 AND shelf = $3 AND cell = $4`,
		addr.WarehouseID, addr.Block, addr.Shelf, addr.Cell,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cell: %w", err)
	}
	return c, nil
}

// Occupy upsert condicional: inserta la celda o la toma solo si occupied_by es NULL.
// Con otra unidad dentro el DO UPDATE no aplica y RowsAffected es 0.
func (r *CellRepo) Occupy(ctx context.Context, addr entity.CellAddress, unitID string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		INSERT INTO cells (warehouse_id, block, shelf, cell, occupied_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (warehouse_id, block, shelf, cell)
		DO UPDATE SET occupied_by = EXCLUDED.occupied_by, updated_at = EXCLUDED.updated_at
		WHERE cells.occupied_by IS NULL`,
		addr.WarehouseID, addr.Block, addr.Shelf, addr.Cell, unitID,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == "idx_cells_occupied_by" {
			return false, domain.Errorf(domain.KindUnitAlreadyPlaced, "la unidad %s ya ocupa otra celda", unitID)
		}
		return false, fmt.Errorf("occupy cell %s: %w", addr, err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Release libera la celda solo si la ocupa unitID.
func (r *CellRepo) Release(ctx context.Context, addr entity.CellAddress, unitID string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE cells SET occupied_by = NULL, updated_at = now()
		WHERE warehouse_id = $1 AND block = $2 AND shelf = $3 AND cell = $4 AND occupied_by = $5`,
		addr.WarehouseID, addr.Block, addr.Shelf, addr.Cell, unitID,
	)
	if err != nil {
		return false, fmt.Errorf("release cell %s: %w", addr, err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListOccupied celdas ocupadas de una bodega ordenadas por coordenada.
func (r *CellRepo) ListOccupied(ctx context.Context, warehouseID string) ([]*entity.Cell, error) {
	return r.list(ctx, `
		SELECT warehouse_id, block, shelf, cell, occupied_by, updated_at
		FROM cells WHERE warehouse_id = $1 AND occupied_by IS NOT NULL
		ORDER BY block, shelf, cell`, warehouseID)
}

// ListAllOccupied celdas ocupadas de todas las bodegas.
func (r *CellRepo) ListAllOccupied(ctx context.Context) ([]*entity.Cell, error) {
	return r.list(ctx, `
		SELECT warehouse_id, block, shelf, cell, occupied_by, updated_at
		FROM cells WHERE occupied_by IS NOT NULL
		ORDER BY warehouse_id, block, shelf, cell`)
}

func (r *CellRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Cell, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCell(row pgx.Row) (*entity.Cell, error) {
	var c entity.Cell
	var occupiedBy *string
	if err := row.Scan(&c.Address.WarehouseID, &c.Address.Block, &c.Address.Shelf, &c.Address.Cell, &occupiedBy, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.OccupiedBy = derefString(occupiedBy)
	return &c, nil
}

// OccupancyPercent calcula el porcentaje en SQL (NUMERIC); el codec de shopspring registrado en el pool
// lo decodifica a decimal.Decimal sin pasar por float.
func (r *CellRepo) OccupancyPercent(ctx context.Context, warehouseID string, capacity int) (decimal.Decimal, error) {
	if capacity <= 0 {
		return decimal.Zero, nil
	}
	var pct decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT round(100.0 * count(*) / $2::numeric, 2)
		FROM cells WHERE warehouse_id = $1 AND occupied_by IS NOT NULL`,
		warehouseID, capacity,
	).Scan(&pct)
	if err != nil {
		return decimal.Zero, fmt.Errorf("occupancy percent: %w", err)
	}
	return pct, nil
}
