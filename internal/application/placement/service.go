package placement

import (
	"context"
	"strings"

	"github.com/jhoicas/cargo-placement/internal/domain/cellcode"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
)

// CellInfo resultado de VerifyCell (chequeo de solo lectura antes de confirmar un escaneo).
type CellInfo struct {
	WarehouseID        string
	WarehouseDisplayID string
	WarehouseName      string
	Code               string
	Block              int
	Shelf              int
	Cell               int
	IsOccupied         bool
	OccupantUnitID     string
}

// PlacementService orquestación delgada expuesta a operadores y couriers.
// operatorID y el rol ya fueron validados por el proveedor de identidad.
type PlacementService struct {
	registry   *CargoUnitRegistry
	codec      *CellCodeCodec
	layout     *WarehouseLayout
	ledger     *PlacementLedger
	aggregator *PlacementProgressAggregator
}

// NewPlacementService construye el servicio.
func NewPlacementService(
	registry *CargoUnitRegistry,
	codec *CellCodeCodec,
	layout *WarehouseLayout,
	ledger *PlacementLedger,
	aggregator *PlacementProgressAggregator,
) *PlacementService {
	return &PlacementService{
		registry:   registry,
		codec:      codec,
		layout:     layout,
		ledger:     ledger,
		aggregator: aggregator,
	}
}

// PlaceByCode parse del código → ubicación en el ledger → avance actualizado de la solicitud,
// para que el cliente muestre "2/4 ubicadas" sin otra llamada.
func (s *PlacementService) PlaceByCode(ctx context.Context, unitID, rawCellCode, operatorID, defaultWarehouseID string) (*placement.Progress, error) {
	addr, err := s.codec.Parse(ctx, rawCellCode, defaultWarehouseID)
	if err != nil {
		return nil, err
	}
	unit, err := s.registry.FindUnit(ctx, strings.TrimSpace(unitID))
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Place(ctx, unit.HumanID, addr, operatorID); err != nil {
		return nil, err
	}
	return s.aggregator.Progress(ctx, unit.RequestNumber)
}

// RetryOutcome para quien recibió UNIT_ALREADY_PLACED: sameCell indica que la unidad ya está en la
// celda pedida, es decir, el reintento equivale a un éxito.
func (s *PlacementService) RetryOutcome(ctx context.Context, unitID, rawCellCode, defaultWarehouseID string) (*placement.Progress, bool, error) {
	addr, err := s.codec.Parse(ctx, rawCellCode, defaultWarehouseID)
	if err != nil {
		return nil, false, err
	}
	unit, err := s.registry.FindUnit(ctx, strings.TrimSpace(unitID))
	if err != nil {
		return nil, false, err
	}
	sameCell := unit.IsPlaced && unit.Cell != nil && *unit.Cell == addr
	progress, err := s.aggregator.Progress(ctx, unit.RequestNumber)
	if err != nil {
		return nil, false, err
	}
	return progress, sameCell, nil
}

// VerifyCell chequeo de solo lectura: "celda libre / ocupada por X".
func (s *PlacementService) VerifyCell(ctx context.Context, rawCellCode, defaultWarehouseID string) (*CellInfo, error) {
	addr, w, err := s.codec.resolve(ctx, rawCellCode, defaultWarehouseID)
	if err != nil {
		return nil, err
	}
	occupant, err := s.layout.Occupant(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &CellInfo{
		WarehouseID:        w.ID,
		WarehouseDisplayID: w.DisplayID,
		WarehouseName:      w.Name,
		Code:               cellcode.Encode(w.DisplayID, addr.Block, addr.Shelf, addr.Cell),
		Block:              addr.Block,
		Shelf:              addr.Shelf,
		Cell:               addr.Cell,
		IsOccupied:         occupant != "",
		OccupantUnitID:     occupant,
	}, nil
}

// Unplace retira la unidad de su celda y devuelve el avance recalculado.
func (s *PlacementService) Unplace(ctx context.Context, unitID, operatorID string) (*placement.Progress, error) {
	unit, err := s.registry.FindUnit(ctx, strings.TrimSpace(unitID))
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Unplace(ctx, unit.HumanID, operatorID); err != nil {
		return nil, err
	}
	return s.aggregator.Progress(ctx, unit.RequestNumber)
}

// FindUnit localiza la unidad por su ID humano.
func (s *PlacementService) FindUnit(ctx context.Context, unitID string) (*entity.IndividualUnit, error) {
	return s.registry.FindUnit(ctx, strings.TrimSpace(unitID))
}

// CanonicalCode forma compacta canónica de un código escaneado (ej. legado -> compacto).
func (s *PlacementService) CanonicalCode(ctx context.Context, rawCellCode, defaultWarehouseID string) (string, error) {
	addr, w, err := s.codec.resolve(ctx, rawCellCode, defaultWarehouseID)
	if err != nil {
		return "", err
	}
	return cellcode.Encode(w.DisplayID, addr.Block, addr.Shelf, addr.Cell), nil
}

// DescribeCell código de una dirección ya persistida, aunque la bodega haya cambiado de dimensiones.
func (s *PlacementService) DescribeCell(ctx context.Context, addr entity.CellAddress) string {
	return s.ledger.Describe(ctx, addr)
}

// Progress avance de la solicitud (GET placement_progress).
func (s *PlacementService) Progress(ctx context.Context, requestNumber string) (*placement.Progress, error) {
	return s.aggregator.Progress(ctx, requestNumber)
}
