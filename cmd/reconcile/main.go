// reconcile reconstruye el estado de unidades y celdas a partir del log de ubicaciones.
//
// Uso: go run ./cmd/reconcile [-dry-run]
// Con -dry-run solo reporta diferencias; no escribe nada.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/bootstrap"
	"github.com/jhoicas/cargo-placement/pkg/config"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "solo auditar, sin escribir")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de la reconstrucción")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.Storage.Driver).Msg("reconcile requiere almacenamiento postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	components, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer components.Close()

	var report *placement.ReconcileReport
	if *dryRun {
		report, err = components.Ledger.Audit(ctx)
	} else {
		report, err = components.Ledger.Reconstruct(ctx)
	}
	if err != nil {
		log.Error().Err(err).Bool("dry_run", *dryRun).Msg("reconciliación fallida")
		return
	}

	log.Info().
		Bool("dry_run", *dryRun).
		Bool("consistent", report.Consistent()).
		Int("records_replayed", report.RecordsReplayed).
		Int("skipped_records", report.SkippedRecords).
		Strs("orphan_records", report.OrphanRecords).
		Strs("units_cleared", report.UnitsCleared).
		Strs("units_restored", report.UnitsRestored).
		Int("cells_cleared", len(report.CellsCleared)).
		Int("cells_restored", len(report.CellsRestored)).
		Msg("reconciliación terminada")
	if !report.Consistent() && *dryRun {
		os.Exit(2)
	}
}
