// migrate aplica o revierte el esquema PostgreSQL.
//
// Uso: go run ./cmd/migrate [up|down|version]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/cargo-placement/internal/infrastructure/postgres"
	"github.com/jhoicas/cargo-placement/pkg/config"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	m := postgres.NewMigrator(pool)
	switch cmd {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "version":
		var v int64
		v, err = m.Version(ctx)
		if err == nil {
			log.Info().Int64("version", v).Msg("versión del esquema")
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", cmd).Msg("migración terminada")
}
