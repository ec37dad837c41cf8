package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// CellRepository índice de ocupación derivado, clave (warehouse_id, block, shelf, cell).
type CellRepository interface {
	// Get devuelve la celda o (nil, nil) si nunca se ocupó.
	Get(ctx context.Context, addr entity.CellAddress) (*entity.Cell, error)
	// Occupy escritura condicional (precondición occupied_by vacío). false si otra unidad la ocupa.
	Occupy(ctx context.Context, addr entity.CellAddress, unitID string) (bool, error)
	// Release libera la celda solo si la ocupa unitID. false si no coincide.
	Release(ctx context.Context, addr entity.CellAddress, unitID string) (bool, error)
	ListOccupied(ctx context.Context, warehouseID string) ([]*entity.Cell, error)
	// ListAllOccupied todas las celdas ocupadas de todas las bodegas (reconciliación).
	ListAllOccupied(ctx context.Context) ([]*entity.Cell, error)
	// OccupancyPercent porcentaje de celdas ocupadas de la bodega sobre capacity, con 2 decimales.
	OccupancyPercent(ctx context.Context, warehouseID string, capacity int) (decimal.Decimal, error)
}
