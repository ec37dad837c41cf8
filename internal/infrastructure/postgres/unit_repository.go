package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

const unitColumns = `id, human_id, request_id, request_number, item_type_index, unit_index,
	is_placed, warehouse_id, block, shelf, cell, placed_by, placed_at`

// UnitRepo unidades individuales. is_placed es la fuente de verdad de la ubicación.
type UnitRepo struct {
	db Querier
}

// NewUnitRepository construye el adaptador.
func NewUnitRepository(db Querier) *UnitRepo {
	return &UnitRepo{db: db}
}

// CreateBatch inserta todas las unidades de una solicitud en un solo round-trip.
func (r *UnitRepo) CreateBatch(ctx context.Context, units []*entity.IndividualUnit) error {
	if len(units) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range units {
		batch.Queue(`
			INSERT INTO units (id, human_id, request_id, request_number, item_type_index, unit_index, is_placed)
			VALUES ($1, $2, $3, $4, $5, $6, false)`,
			u.ID, u.HumanID, u.RequestID, u.RequestNumber, u.ItemTypeIndex, u.UnitIndex,
		)
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, u := range units {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert unit %s: %w", u.HumanID, err)
		}
	}
	return nil
}

// GetByHumanID obtiene la unidad por su ID humano.
func (r *UnitRepo) GetByHumanID(ctx context.Context, humanID string) (*entity.IndividualUnit, error) {
	u, err := scanUnit(r.db.QueryRow(ctx, `SELECT `+unitColumns+` FROM units WHERE human_id = $1`, humanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

// ListByRequest unidades de la solicitud ordenadas por tipo e índice.
func (r *UnitRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.IndividualUnit, error) {
	return r.list(ctx, `SELECT `+unitColumns+` FROM units WHERE request_id = $1
		ORDER BY length(item_type_index), item_type_index, length(unit_index), unit_index`, requestID)
}

// ListByRequestForUpdate bloquea las unidades de la solicitud (SELECT ... FOR UPDATE) para que
// ninguna ubicación concurrente se cuele entre el listado y el borrado en cascada.
func (r *UnitRepo) ListByRequestForUpdate(ctx context.Context, requestID string) ([]*entity.IndividualUnit, error) {
	return r.list(ctx, `SELECT `+unitColumns+` FROM units WHERE request_id = $1
		ORDER BY length(item_type_index), item_type_index, length(unit_index), unit_index
		FOR UPDATE`, requestID)
}

// ListPlaced todas las unidades marcadas como ubicadas.
func (r *UnitRepo) ListPlaced(ctx context.Context) ([]*entity.IndividualUnit, error) {
	return r.list(ctx, `SELECT `+unitColumns+` FROM units WHERE is_placed ORDER BY human_id`)
}

func (r *UnitRepo) list(ctx context.Context, query string, args ...any) ([]*entity.IndividualUnit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []*entity.IndividualUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// MarkPlaced UPDATE condicional: solo afecta filas con is_placed = false.
// Dos transacciones concurrentes sobre la misma unidad se serializan en el lock de fila
// y la segunda ve 0 filas afectadas.
func (r *UnitRepo) MarkPlaced(ctx context.Context, humanID string, addr entity.CellAddress, operatorID string, at time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE units
		SET is_placed = true, warehouse_id = $2, block = $3, shelf = $4, cell = $5, placed_by = $6, placed_at = $7
		WHERE human_id = $1 AND NOT is_placed`,
		humanID, addr.WarehouseID, addr.Block, addr.Shelf, addr.Cell, nullString(operatorID), at,
	)
	if err != nil {
		return false, fmt.Errorf("mark unit placed: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkUnplaced UPDATE condicional: solo afecta filas con is_placed = true.
func (r *UnitRepo) MarkUnplaced(ctx context.Context, humanID string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE units
		SET is_placed = false, warehouse_id = NULL, block = NULL, shelf = NULL, cell = NULL,
			placed_by = NULL, placed_at = NULL
		WHERE human_id = $1 AND is_placed`, humanID)
	if err != nil {
		return false, fmt.Errorf("mark unit unplaced: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanUnit(row pgx.Row) (*entity.IndividualUnit, error) {
	var u entity.IndividualUnit
	var warehouseID, placedBy *string
	var block, shelf, cell *int
	var placedAt *time.Time
	if err := row.Scan(
		&u.ID, &u.HumanID, &u.RequestID, &u.RequestNumber, &u.ItemTypeIndex, &u.UnitIndex,
		&u.IsPlaced, &warehouseID, &block, &shelf, &cell, &placedBy, &placedAt,
	); err != nil {
		return nil, err
	}
	if u.IsPlaced && warehouseID != nil {
		u.Cell = &entity.CellAddress{
			WarehouseID: *warehouseID,
			Block:       derefInt(block),
			Shelf:       derefInt(shelf),
			Cell:        derefInt(cell),
		}
		u.PlacedBy = derefString(placedBy)
		u.PlacedAt = placedAt
	}
	return &u, nil
}
