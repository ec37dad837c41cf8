package placement

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/cellcode"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

// CellCodeCodec convierte códigos escaneados en direcciones validadas y viceversa.
// La bodega por defecto del código legado llega siempre por parámetro (sesión del operador).
type CellCodeCodec struct {
	warehouses repository.WarehouseRepository
	layout     *WarehouseLayout
}

// NewCellCodeCodec construye el codec.
func NewCellCodeCodec(warehouses repository.WarehouseRepository, layout *WarehouseLayout) *CellCodeCodec {
	return &CellCodeCodec{warehouses: warehouses, layout: layout}
}

// Parse reconoce la forma compacta o la legada, resuelve la bodega y valida rangos.
func (c *CellCodeCodec) Parse(ctx context.Context, raw, defaultWarehouseID string) (entity.CellAddress, error) {
	addr, _, err := c.resolve(ctx, raw, defaultWarehouseID)
	return addr, err
}

// Render devuelve la forma compacta canónica; Parse(Render(a)) == a.
func (c *CellCodeCodec) Render(ctx context.Context, addr entity.CellAddress) (string, error) {
	w, err := c.layout.Warehouse(ctx, addr.WarehouseID)
	if err != nil {
		return "", err
	}
	if err := placement.ValidateAddress(w, addr.Block, addr.Shelf, addr.Cell); err != nil {
		return "", err
	}
	return cellcode.Encode(w.DisplayID, addr.Block, addr.Shelf, addr.Cell), nil
}

func (c *CellCodeCodec) resolve(ctx context.Context, raw, defaultWarehouseID string) (entity.CellAddress, *entity.Warehouse, error) {
	code, err := cellcode.Decode(raw)
	if err != nil {
		return entity.CellAddress{}, nil, err
	}

	var w *entity.Warehouse
	switch code.Grammar {
	case cellcode.GrammarCompact:
		w, err = c.byDisplayID(ctx, code.DisplayID)
	case cellcode.GrammarLegacy:
		if defaultWarehouseID == "" {
			return entity.CellAddress{}, nil, domain.Errorf(domain.KindNoDefaultWarehouse,
				"el código %q no indica bodega y la sesión no tiene bodega asignada", raw)
		}
		w, err = c.layout.Warehouse(ctx, defaultWarehouseID)
	default:
		err = domain.Errorf(domain.KindUnknownFormat, "código de celda %q no reconocido", raw)
	}
	if err != nil {
		return entity.CellAddress{}, nil, err
	}

	if err := placement.ValidateAddress(w, code.Block, code.Shelf, code.Cell); err != nil {
		return entity.CellAddress{}, nil, err
	}
	return entity.CellAddress{
		WarehouseID: w.ID,
		Block:       code.Block,
		Shelf:       code.Shelf,
		Cell:        code.Cell,
	}, w, nil
}

// byDisplayID busca por número corto; "1" también encuentra "001".
func (c *CellCodeCodec) byDisplayID(ctx context.Context, displayID string) (*entity.Warehouse, error) {
	w, err := c.warehouses.GetByDisplayID(ctx, displayID)
	if err != nil {
		return nil, err
	}
	if w == nil && len(displayID) < 3 {
		if n, convErr := strconv.Atoi(displayID); convErr == nil {
			w, err = c.warehouses.GetByDisplayID(ctx, fmt.Sprintf("%03d", n))
			if err != nil {
				return nil, err
			}
		}
	}
	if w == nil {
		return nil, domain.Errorf(domain.KindUnknownWarehouse, "no existe bodega con número %s", displayID)
	}
	return w, nil
}
