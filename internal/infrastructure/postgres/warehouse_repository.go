package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

const warehouseColumns = `id, display_id, name, blocks_count, shelves_per_block, cells_per_shelf, created_at, updated_at`

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	db Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(db Querier) *WarehouseRepo {
	return &WarehouseRepo{db: db}
}

// Create persiste una nueva bodega. ALREADY_EXISTS si el número corto ya está tomado.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (` + warehouseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		warehouse.ID, warehouse.DisplayID, warehouse.Name,
		nullInt(warehouse.BlocksCount), nullInt(warehouse.ShelvesPerBlock), nullInt(warehouse.CellsPerShelf),
		warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.KindAlreadyExists, "ya existe una bodega con número %s", warehouse.DisplayID)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id)
}

// GetByDisplayID obtiene una bodega por su número corto.
func (r *WarehouseRepo) GetByDisplayID(ctx context.Context, displayID string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE display_id = $1`, displayID)
}

func (r *WarehouseRepo) getOne(ctx context.Context, query string, arg string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

// Update actualiza nombre y dimensiones de una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $2, blocks_count = $3, shelves_per_block = $4, cells_per_shelf = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query,
		warehouse.ID, warehouse.Name,
		nullInt(warehouse.BlocksCount), nullInt(warehouse.ShelvesPerBlock), nullInt(warehouse.CellsPerShelf),
		warehouse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Errorf(domain.KindUnknownWarehouse, "bodega %s no encontrada", warehouse.ID)
	}
	return nil
}

// List lista bodegas ordenadas por número corto con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses ORDER BY display_id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	var blocks, shelves, cells *int
	if err := row.Scan(&w.ID, &w.DisplayID, &w.Name, &blocks, &shelves, &cells, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.BlocksCount = derefInt(blocks)
	w.ShelvesPerBlock = derefInt(shelves)
	w.CellsPerShelf = derefInt(cells)
	return &w, nil
}
