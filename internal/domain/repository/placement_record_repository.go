package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// PlacementRecordFilter filtros opcionales para consultar el log.
type PlacementRecordFilter struct {
	UnitID      string
	WarehouseID string
	OperatorID  string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// PlacementRecordRepository log append-only. No hay Update ni Delete.
type PlacementRecordRepository interface {
	Append(ctx context.Context, rec *entity.PlacementRecord) error
	// ListAll todo el log ordenado por ID ascendente (reconstrucción).
	ListAll(ctx context.Context) ([]entity.PlacementRecord, error)
	List(ctx context.Context, f PlacementRecordFilter) ([]entity.PlacementRecord, error)
}
