package placement

import (
	"context"
	"time"

	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que unidad, celda y log se escriban juntos o no se escriba nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error, opts ...TxOption) error
	// RunCargo agrega el repositorio de solicitudes (alta y baja de carga).
	RunCargo(ctx context.Context, fn func(
		requests repository.CargoRequestRepository,
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error, opts ...TxOption) error
}

// TxOptions ajustes de una transacción de ubicación.
type TxOptions struct {
	// Exclusive no convive con ninguna otra transacción de ubicación (reconciliación del log).
	// El resto de transacciones se toman en modo compartido y solo se excluyen con esta.
	Exclusive bool
}

// TxOption modifica TxOptions.
type TxOption func(*TxOptions)

// Exclusive pide la transacción en modo exclusivo.
func Exclusive() TxOption {
	return func(o *TxOptions) { o.Exclusive = true }
}

// ApplyTxOptions resuelve las opciones recibidas por un TxRunner.
func ApplyTxOptions(opts []TxOption) TxOptions {
	var o TxOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RecordIDGenerator genera IDs monótonos para el log (snowflake).
type RecordIDGenerator interface {
	NextID() int64
}

// Clock permite fijar el tiempo en tests.
type Clock func() time.Time
