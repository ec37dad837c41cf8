// Package bootstrap arma el grafo de dependencias compartido por los binarios de cmd/.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/application/usecase"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/internal/infrastructure/idgen"
	"github.com/jhoicas/cargo-placement/internal/infrastructure/memory"
	"github.com/jhoicas/cargo-placement/internal/infrastructure/postgres"
	"github.com/jhoicas/cargo-placement/pkg/config"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// Components servicios listos para usar.
type Components struct {
	Layout      *placement.WarehouseLayout
	Codec       *placement.CellCodeCodec
	Registry    *placement.CargoUnitRegistry
	Ledger      *placement.PlacementLedger
	Aggregator  *placement.PlacementProgressAggregator
	Service     *placement.PlacementService
	WarehouseUC *usecase.WarehouseUseCase

	close func()
}

// Close libera el pool de conexiones (no-op en memoria).
func (c *Components) Close() {
	if c.close != nil {
		c.close()
	}
}

type repos struct {
	warehouses repository.WarehouseRepository
	requests   repository.CargoRequestRepository
	units      repository.UnitRepository
	cells      repository.CellRepository
	records    repository.PlacementRecordRepository
	txRunner   placement.TxRunner
}

// Build conecta el almacenamiento configurado y construye los servicios.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Components, error) {
	ids, err := idgen.NewSnowflake(cfg.IDGen.Node)
	if err != nil {
		return nil, err
	}

	var r repos
	closeFn := func() {}
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		r = repos{
			warehouses: store.Warehouses(),
			requests:   store.Requests(),
			units:      store.Units(),
			cells:      store.Cells(),
			records:    store.Records(),
			txRunner:   store,
		}
		log.Warn().Msg("almacenamiento en memoria: el estado se pierde al reiniciar")
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.Storage.RunMigrations {
			if err := postgres.NewMigrator(pool).Up(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Msg("migraciones aplicadas")
		}
		r = repos{
			warehouses: postgres.NewWarehouseRepository(pool),
			requests:   postgres.NewCargoRequestRepository(pool),
			units:      postgres.NewUnitRepository(pool),
			cells:      postgres.NewCellRepository(pool),
			records:    postgres.NewPlacementRecordRepository(pool),
			txRunner:   postgres.NewTxRunner(pool),
		}
		closeFn = pool.Close
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Storage.Driver)
	}

	c := Wire(r.txRunner, r.warehouses, r.requests, r.units, r.cells, r.records, ids, log)
	c.close = closeFn
	return c, nil
}

// Wire construye los servicios sobre repositorios ya creados (tests y Build).
func Wire(
	txRunner placement.TxRunner,
	warehouses repository.WarehouseRepository,
	requests repository.CargoRequestRepository,
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
	ids placement.RecordIDGenerator,
	log *logger.Logger,
) *Components {
	layout := placement.NewWarehouseLayout(warehouses, cells)
	codec := placement.NewCellCodeCodec(warehouses, layout)
	registry := placement.NewCargoUnitRegistry(txRunner, requests, units, ids, log)
	ledger := placement.NewPlacementLedger(txRunner, records, layout, ids, log)
	aggregator := placement.NewPlacementProgressAggregator(requests, units)
	return &Components{
		Layout:      layout,
		Codec:       codec,
		Registry:    registry,
		Ledger:      ledger,
		Aggregator:  aggregator,
		Service:     placement.NewPlacementService(registry, codec, layout, ledger, aggregator),
		WarehouseUC: usecase.NewWarehouseUseCase(warehouses, cells, units, log),
	}
}

// Memory atajo para tests: todo sobre un memory.Store nuevo.
func Memory(ids placement.RecordIDGenerator, log *logger.Logger) (*Components, *memory.Store) {
	store := memory.NewStore()
	c := Wire(store, store.Warehouses(), store.Requests(), store.Units(), store.Cells(), store.Records(), ids, log)
	return c, store
}
