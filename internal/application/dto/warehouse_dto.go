package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest entrada para crear una bodega. DisplayID es el número corto de los códigos
// de celda ("1" se guarda como "001"). Las dimensiones son opcionales: sin ellas aplica el layout por defecto.
type CreateWarehouseRequest struct {
	DisplayID       string `json:"display_id" validate:"required,numeric,max=6"`
	Name            string `json:"name" validate:"required,min=1,max=200"`
	BlocksCount     int    `json:"blocks_count" validate:"omitempty,min=1,max=999"`
	ShelvesPerBlock int    `json:"shelves_per_block" validate:"omitempty,min=1,max=999"`
	CellsPerShelf   int    `json:"cells_per_shelf" validate:"omitempty,min=1,max=9999"`
}

// UpdateWarehouseRequest entrada para actualizar nombre o dimensiones de una bodega.
type UpdateWarehouseRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	BlocksCount     *int    `json:"blocks_count" validate:"omitempty,min=1,max=999"`
	ShelvesPerBlock *int    `json:"shelves_per_block" validate:"omitempty,min=1,max=999"`
	CellsPerShelf   *int    `json:"cells_per_shelf" validate:"omitempty,min=1,max=9999"`
}

// WarehouseResponse salida de una bodega con su layout efectivo.
type WarehouseResponse struct {
	ID              string    `json:"id"`
	DisplayID       string    `json:"display_id"`
	Name            string    `json:"name"`
	BlocksCount     int       `json:"blocks_count"`
	ShelvesPerBlock int       `json:"shelves_per_block"`
	CellsPerShelf   int       `json:"cells_per_shelf"`
	DefaultLayout   bool      `json:"default_layout"`
	Capacity        int       `json:"capacity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// OccupiedCellRow fila del reporte de ocupación.
type OccupiedCellRow struct {
	Code          string     `json:"code"`
	Block         int        `json:"block"`
	Shelf         int        `json:"shelf"`
	Cell          int        `json:"cell"`
	UnitID        string     `json:"unit_id"`
	RequestNumber string     `json:"request_number"`
	PlacedBy      string     `json:"placed_by"`
	PlacedAt      *time.Time `json:"placed_at,omitempty"`
}

// OccupancyReport ocupación de una bodega (fuente del export xlsx).
type OccupancyReport struct {
	Warehouse WarehouseResponse `json:"warehouse"`
	Occupied  int               `json:"occupied"`
	Capacity  int               `json:"capacity"`
	Percent   decimal.Decimal   `json:"percent"`
	Rows      []OccupiedCellRow `json:"rows"`
}
