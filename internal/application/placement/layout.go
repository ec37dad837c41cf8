package placement

import (
	"context"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

// WarehouseLayout responde "¿existe (bloque, estante, celda) en la bodega W?" y "¿está libre?".
// Es de solo lectura sobre las tablas de bodegas y celdas.
type WarehouseLayout struct {
	warehouses repository.WarehouseRepository
	cells      repository.CellRepository
}

// NewWarehouseLayout construye el servicio de layout.
func NewWarehouseLayout(warehouses repository.WarehouseRepository, cells repository.CellRepository) *WarehouseLayout {
	return &WarehouseLayout{warehouses: warehouses, cells: cells}
}

// Warehouse resuelve la bodega por ID interno. UNKNOWN_WAREHOUSE si no existe.
func (l *WarehouseLayout) Warehouse(ctx context.Context, warehouseID string) (*entity.Warehouse, error) {
	if warehouseID == "" {
		return nil, domain.Errorf(domain.KindUnknownWarehouse, "bodega no indicada")
	}
	w, err := l.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.Errorf(domain.KindUnknownWarehouse, "bodega %s no encontrada", warehouseID)
	}
	return w, nil
}

// ValidateAddress falla con OUT_OF_RANGE si alguna coordenada excede las dimensiones de la bodega
// (o el layout por defecto si no tiene metadatos) y UNKNOWN_WAREHOUSE si la bodega no existe.
func (l *WarehouseLayout) ValidateAddress(ctx context.Context, warehouseID string, block, shelf, cell int) error {
	w, err := l.Warehouse(ctx, warehouseID)
	if err != nil {
		return err
	}
	return placement.ValidateAddress(w, block, shelf, cell)
}

// IsFree indica si la celda no está ocupada. No valida rangos.
func (l *WarehouseLayout) IsFree(ctx context.Context, warehouseID string, block, shelf, cell int) (bool, error) {
	c, err := l.cells.Get(ctx, entity.CellAddress{WarehouseID: warehouseID, Block: block, Shelf: shelf, Cell: cell})
	if err != nil {
		return false, err
	}
	return c.IsFree(), nil
}

// Occupant devuelve el HumanID de la unidad en la celda ("" si libre).
func (l *WarehouseLayout) Occupant(ctx context.Context, addr entity.CellAddress) (string, error) {
	c, err := l.cells.Get(ctx, addr)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", nil
	}
	return c.OccupiedBy, nil
}
