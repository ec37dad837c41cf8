package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/cellcode"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// WarehouseUseCase alta, consulta y reporte de ocupación de bodegas.
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	cells repository.CellRepository
	units repository.UnitRepository
	log   *logger.Logger
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(
	repo repository.WarehouseRepository,
	cells repository.CellRepository,
	units repository.UnitRepository,
	log *logger.Logger,
) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, cells: cells, units: units, log: log}
}

// NormalizeDisplayID "1" -> "001", "0001" -> "001"; más de 3 dígitos significativos se conservan.
func NormalizeDisplayID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return "", domain.Errorf(domain.KindValidation, "display_id %q debe ser numérico", raw)
	}
	id := fmt.Sprintf("%03d", n)
	if len(id) > 6 {
		return "", domain.Errorf(domain.KindValidation, "display_id %q excede 6 dígitos", raw)
	}
	return id, nil
}

// Create crea una nueva bodega. ALREADY_EXISTS si el número corto ya está en uso.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	displayID, err := NormalizeDisplayID(in.DisplayID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByDisplayID(ctx, displayID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Errorf(domain.KindAlreadyExists, "ya existe una bodega con número %s", displayID)
	}

	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:              uuid.New().String(),
		DisplayID:       displayID,
		Name:            normalizeName(in.Name),
		BlocksCount:     in.BlocksCount,
		ShelvesPerBlock: in.ShelvesPerBlock,
		CellsPerShelf:   in.CellsPerShelf,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	ev := uc.log.Info()
	if !warehouse.HasLayout() {
		ev = uc.log.Warn()
	}
	ev.Str("warehouse_id", warehouse.ID).
		Str("display_id", displayID).
		Bool("default_layout", !warehouse.HasLayout()).
		Msg("bodega creada")
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID. UNKNOWN_WAREHOUSE si no existe.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByDisplayID obtiene una bodega por su número corto ("1" y "001" son la misma).
func (uc *WarehouseUseCase) GetByDisplayID(ctx context.Context, displayID string) (*dto.WarehouseResponse, error) {
	id, err := NormalizeDisplayID(displayID)
	if err != nil {
		return nil, err
	}
	warehouse, err := uc.repo.GetByDisplayID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.Errorf(domain.KindUnknownWarehouse, "bodega %s no encontrada", id)
	}
	return toWarehouseResponse(warehouse), nil
}

func (uc *WarehouseUseCase) get(ctx context.Context, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.Errorf(domain.KindUnknownWarehouse, "bodega %s no encontrada", id)
	}
	return warehouse, nil
}

// Update actualiza nombre o dimensiones. Reducir dimensiones no mueve unidades ya ubicadas.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		warehouse.Name = normalizeName(*in.Name)
	}
	if in.BlocksCount != nil {
		warehouse.BlocksCount = *in.BlocksCount
	}
	if in.ShelvesPerBlock != nil {
		warehouse.ShelvesPerBlock = *in.ShelvesPerBlock
	}
	if in.CellsPerShelf != nil {
		warehouse.CellsPerShelf = *in.CellsPerShelf
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Occupancy celdas ocupadas de la bodega con la unidad que las ocupa.
func (uc *WarehouseUseCase) Occupancy(ctx context.Context, id string) (*dto.OccupancyReport, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	cells, err := uc.cells.ListOccupied(ctx, warehouse.ID)
	if err != nil {
		return nil, err
	}
	percent, err := uc.cells.OccupancyPercent(ctx, warehouse.ID, warehouse.Capacity())
	if err != nil {
		return nil, err
	}
	report := &dto.OccupancyReport{
		Warehouse: *toWarehouseResponse(warehouse),
		Occupied:  len(cells),
		Capacity:  warehouse.Capacity(),
		Percent:   percent,
		Rows:      make([]dto.OccupiedCellRow, 0, len(cells)),
	}
	for _, c := range cells {
		row := dto.OccupiedCellRow{
			Code:   cellcode.Encode(warehouse.DisplayID, c.Address.Block, c.Address.Shelf, c.Address.Cell),
			Block:  c.Address.Block,
			Shelf:  c.Address.Shelf,
			Cell:   c.Address.Cell,
			UnitID: c.OccupiedBy,
		}
		u, err := uc.units.GetByHumanID(ctx, c.OccupiedBy)
		if err != nil {
			return nil, err
		}
		if u != nil {
			row.RequestNumber = u.RequestNumber
			row.PlacedBy = u.PlacedBy
			row.PlacedAt = u.PlacedAt
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// normalizeName NFC para que "Bodega Bogotá" escrita con tilde combinada se compare igual.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	l := w.Layout()
	return &dto.WarehouseResponse{
		ID:              w.ID,
		DisplayID:       w.DisplayID,
		Name:            w.Name,
		BlocksCount:     l.Blocks,
		ShelvesPerBlock: l.ShelvesPerBlock,
		CellsPerShelf:   l.CellsPerShelf,
		DefaultLayout:   !w.HasLayout(),
		Capacity:        w.Capacity(),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}
