package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ repository.PlacementRecordRepository = (*PlacementRecordRepo)(nil)

// defaultRecordLimit tope de filas cuando el filtro no indica Limit.
const defaultRecordLimit = 100

var recordColumns = []string{"id", "action", "unit_id", "warehouse_id", "block", "shelf", "cell", "operator_id", "created_at"}

// PlacementRecordRepo log append-only de ubicaciones. Sin UPDATE ni DELETE.
type PlacementRecordRepo struct {
	db Querier
	sb sq.StatementBuilderType
}

// NewPlacementRecordRepository construye el adaptador.
func NewPlacementRecordRepository(db Querier) *PlacementRecordRepo {
	return &PlacementRecordRepo{db: db, sb: psql}
}

// Append agrega un registro al log.
func (r *PlacementRecordRepo) Append(ctx context.Context, rec *entity.PlacementRecord) error {
	sqlStr, args, err := r.sb.
		Insert("placement_records").
		Columns(recordColumns...).
		Values(rec.ID, rec.Action, rec.UnitID,
			rec.Address.WarehouseID, rec.Address.Block, rec.Address.Shelf, rec.Address.Cell,
			nullString(rec.OperatorID), rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert placement record: %w", err)
	}
	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert placement record: %w", err)
	}
	return nil
}

// ListAll todo el log en orden de ID (orden de escritura).
func (r *PlacementRecordRepo) ListAll(ctx context.Context) ([]entity.PlacementRecord, error) {
	return r.query(ctx, r.sb.Select(recordColumns...).From("placement_records").OrderBy("id"))
}

// List consulta filtrada y paginada, más reciente primero.
func (r *PlacementRecordRepo) List(ctx context.Context, f repository.PlacementRecordFilter) ([]entity.PlacementRecord, error) {
	q := r.sb.Select(recordColumns...).From("placement_records")
	if f.UnitID != "" {
		q = q.Where(sq.Eq{"unit_id": f.UnitID})
	}
	if f.WarehouseID != "" {
		q = q.Where(sq.Eq{"warehouse_id": f.WarehouseID})
	}
	if f.OperatorID != "" {
		q = q.Where(sq.Eq{"operator_id": f.OperatorID})
	}
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.Lt{"created_at": *f.To})
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultRecordLimit
	}
	q = q.OrderBy("id DESC").Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.query(ctx, q)
}

func (r *PlacementRecordRepo) query(ctx context.Context, q sq.SelectBuilder) ([]entity.PlacementRecord, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select placement records: %w", err)
	}
	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list placement records: %w", err)
	}
	defer rows.Close()
	var list []entity.PlacementRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan placement record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanRecord(row pgx.Row) (entity.PlacementRecord, error) {
	var rec entity.PlacementRecord
	var operatorID *string
	err := row.Scan(&rec.ID, &rec.Action, &rec.UnitID,
		&rec.Address.WarehouseID, &rec.Address.Block, &rec.Address.Shelf, &rec.Address.Cell,
		&operatorID, &rec.CreatedAt)
	rec.OperatorID = derefString(operatorID)
	return rec, err
}
