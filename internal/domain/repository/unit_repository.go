package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// UnitRepository tabla de unidades individuales. Fuente de verdad de "¿está ubicada la unidad?".
type UnitRepository interface {
	CreateBatch(ctx context.Context, units []*entity.IndividualUnit) error
	// GetByHumanID devuelve la unidad o (nil, nil).
	GetByHumanID(ctx context.Context, humanID string) (*entity.IndividualUnit, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.IndividualUnit, error)
	// ListByRequestForUpdate igual que ListByRequest pero bloquea las filas hasta el fin de la transacción.
	ListByRequestForUpdate(ctx context.Context, requestID string) ([]*entity.IndividualUnit, error)
	ListPlaced(ctx context.Context) ([]*entity.IndividualUnit, error)
	// MarkPlaced escritura condicional (precondición is_placed = false). false si la unidad ya estaba ubicada o no existe.
	MarkPlaced(ctx context.Context, humanID string, addr entity.CellAddress, operatorID string, at time.Time) (bool, error)
	// MarkUnplaced escritura condicional (precondición is_placed = true). false si no estaba ubicada o no existe.
	MarkUnplaced(ctx context.Context, humanID string) (bool, error)
}
