package repository

import (
	"context"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// CargoRequestRepository persistencia de solicitudes y sus tipos de ítem.
type CargoRequestRepository interface {
	// Create inserta la solicitud con sus tipos de ítem. domain.ErrDuplicateRequest si el número existe.
	Create(ctx context.Context, req *entity.CargoRequest) error
	// GetByNumber devuelve la solicitud con ItemTypes cargados, o (nil, nil).
	GetByNumber(ctx context.Context, requestNumber string) (*entity.CargoRequest, error)
	ExistsNumber(ctx context.Context, requestNumber string) (bool, error)
	// MaxNumberWithPrefix mayor número generado con prefix ("" si no hay). Solo cuentan los números con
	// la forma de la secuencia (placement.IsGeneratedNumber); los preferidos que comparten prefijo se ignoran.
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	// Delete borra la solicitud; tipos de ítem y unidades caen en cascada.
	Delete(ctx context.Context, requestID string) error
}
