package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceRequest escaneo de unidad + celda. WarehouseID solo se usa con códigos legados
// y, si falta, se toma la bodega de la sesión.
type PlaceRequest struct {
	UnitID      string `json:"unit_id" validate:"required,max=128"`
	CellCode    string `json:"cell_code" validate:"required,max=64"`
	WarehouseID string `json:"warehouse_id" validate:"omitempty,max=64"`
}

// PlaceResponse resultado de una ubicación. AlreadyPlaced indica un reintento sobre la misma celda.
type PlaceResponse struct {
	UnitID        string           `json:"unit_id"`
	CellCode      string           `json:"cell_code"`
	AlreadyPlaced bool             `json:"already_placed"`
	Progress      ProgressResponse `json:"progress"`
}

// VerifyCellRequest chequeo de celda antes de confirmar.
type VerifyCellRequest struct {
	CellCode    string `json:"cell_code" validate:"required,max=64"`
	WarehouseID string `json:"warehouse_id" validate:"omitempty,max=64"`
}

// CellInfoResponse estado de una celda.
type CellInfoResponse struct {
	WarehouseID        string `json:"warehouse_id"`
	WarehouseDisplayID string `json:"warehouse_display_id"`
	WarehouseName      string `json:"warehouse_name"`
	Code               string `json:"code"`
	Block              int    `json:"block"`
	Shelf              int    `json:"shelf"`
	Cell               int    `json:"cell"`
	IsOccupied         bool   `json:"is_occupied"`
	OccupantUnitID     string `json:"occupant_unit_id,omitempty"`
}

// ItemTypeProgressResponse avance de un tipo de ítem.
type ItemTypeProgressResponse struct {
	Index   string          `json:"index"`
	Name    string          `json:"name"`
	Placed  int             `json:"placed"`
	Total   int             `json:"total"`
	Percent decimal.Decimal `json:"percent"`
}

// ProgressResponse avance de una solicitud.
type ProgressResponse struct {
	RequestNumber string                     `json:"request_number"`
	TotalUnits    int                        `json:"total_units"`
	PlacedUnits   int                        `json:"placed_units"`
	Percent       decimal.Decimal            `json:"percent"`
	OverallStatus string                     `json:"overall_status"`
	PerItemType   []ItemTypeProgressResponse `json:"per_item_type"`
}

// ItemTypeRequest tipo de ítem en el alta de carga.
type ItemTypeRequest struct {
	Index    string `json:"index" validate:"required,numeric,max=3"`
	Name     string `json:"name" validate:"max=255"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=999"`
}

// RegisterRequest alta de carga. Sin RequestNumber se genera uno (AAMM + secuencia).
type RegisterRequest struct {
	RequestNumber string            `json:"request_number" validate:"omitempty,max=64"`
	ItemTypes     []ItemTypeRequest `json:"item_types" validate:"required,min=1,dive"`
}

// RegisterResponse solicitud registrada con los IDs de sus unidades.
type RegisterResponse struct {
	RequestNumber string   `json:"request_number"`
	TotalUnits    int      `json:"total_units"`
	UnitIDs       []string `json:"unit_ids"`
}

// UnitResponse unidad individual.
type UnitResponse struct {
	UnitID        string     `json:"unit_id"`
	RequestNumber string     `json:"request_number"`
	ItemTypeIndex string     `json:"item_type_index"`
	UnitIndex     string     `json:"unit_index"`
	IsPlaced      bool       `json:"is_placed"`
	CellCode      string     `json:"cell_code,omitempty"`
	PlacedBy      string     `json:"placed_by,omitempty"`
	PlacedAt      *time.Time `json:"placed_at,omitempty"`
}

// DeleteRequestResponse resultado de la baja de carga.
type DeleteRequestResponse struct {
	RequestNumber string `json:"request_number"`
	FreedCells    int    `json:"freed_cells"`
}

// PlacementLogQuery filtros de GET /placements/log.
type PlacementLogQuery struct {
	UnitID      string `query:"unit_id"`
	WarehouseID string `query:"warehouse_id"`
	OperatorID  string `query:"operator_id"`
	From        string `query:"from"` // RFC3339
	To          string `query:"to"`   // RFC3339, exclusivo
	PageRequest
}

// PlacementRecordResponse entrada del log.
type PlacementRecordResponse struct {
	ID         int64     `json:"id,string"`
	Action     string    `json:"action"`
	UnitID     string    `json:"unit_id"`
	CellCode   string    `json:"cell_code"`
	OperatorID string    `json:"operator_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlacementLogResponse página del log.
type PlacementLogResponse struct {
	Items []PlacementRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// ReconcileResponse resultado de Reconstruct / Audit.
type ReconcileResponse struct {
	DryRun          bool     `json:"dry_run"`
	Consistent      bool     `json:"consistent"`
	RecordsReplayed int      `json:"records_replayed"`
	SkippedRecords  int      `json:"skipped_records"`
	OrphanRecords   []string `json:"orphan_records"`
	UnitsCleared    []string `json:"units_cleared"`
	UnitsRestored   []string `json:"units_restored"`
	CellsCleared    []string `json:"cells_cleared"`
	CellsRestored   []string `json:"cells_restored"`
}
