// seed_layout da de alta bodegas a partir de un archivo YAML.
//
// Uso: go run ./cmd/seed_layout [-update] [-latin1] [ruta/layout.yaml]
// Por defecto lee layout.yaml en el directorio actual.
//
// Formato:
//
//	warehouses:
//	  - display_id: "1"
//	    name: Bodega Central
//	    blocks_count: 4
//	    shelves_per_block: 10
//	    cells_per_shelf: 20
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/application/usecase"
	"github.com/jhoicas/cargo-placement/internal/bootstrap"
	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/pkg/config"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

type layoutFile struct {
	Warehouses []warehouseSeed `yaml:"warehouses"`
}

type warehouseSeed struct {
	DisplayID       string `yaml:"display_id"`
	Name            string `yaml:"name"`
	BlocksCount     int    `yaml:"blocks_count"`
	ShelvesPerBlock int    `yaml:"shelves_per_block"`
	CellsPerShelf   int    `yaml:"cells_per_shelf"`
}

func main() {
	update := flag.Bool("update", false, "actualizar nombre y dimensiones de bodegas existentes")
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1 (exportes del sistema legado)")
	flag.Parse()

	path := "layout.yaml"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	seeds, err := readLayout(path, *latin1)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer layout")
	}

	ctx := context.Background()
	components, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer components.Close()

	created, updated, skipped := 0, 0, 0
	for _, s := range seeds.Warehouses {
		res, err := seed(ctx, components.WarehouseUC, s, *update)
		if err != nil {
			log.Error().Err(err).Str("display_id", s.DisplayID).Msg("bodega no cargada")
			continue
		}
		switch res {
		case seedCreated:
			created++
		case seedUpdated:
			updated++
		default:
			skipped++
		}
	}
	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("skipped", skipped).
		Msg("layout cargado")
}

type seedResult int

const (
	seedSkipped seedResult = iota
	seedCreated
	seedUpdated
)

func seed(ctx context.Context, uc *usecase.WarehouseUseCase, s warehouseSeed, update bool) (seedResult, error) {
	_, err := uc.Create(ctx, dto.CreateWarehouseRequest{
		DisplayID:       s.DisplayID,
		Name:            s.Name,
		BlocksCount:     s.BlocksCount,
		ShelvesPerBlock: s.ShelvesPerBlock,
		CellsPerShelf:   s.CellsPerShelf,
	})
	if err == nil {
		return seedCreated, nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return seedSkipped, err
	}
	if !update {
		return seedSkipped, nil
	}
	existing, err := uc.GetByDisplayID(ctx, s.DisplayID)
	if err != nil {
		return seedSkipped, err
	}
	in := dto.UpdateWarehouseRequest{Name: &s.Name}
	if s.BlocksCount > 0 {
		in.BlocksCount = &s.BlocksCount
	}
	if s.ShelvesPerBlock > 0 {
		in.ShelvesPerBlock = &s.ShelvesPerBlock
	}
	if s.CellsPerShelf > 0 {
		in.CellsPerShelf = &s.CellsPerShelf
	}
	if _, err := uc.Update(ctx, existing.ID, in); err != nil {
		return seedSkipped, err
	}
	return seedUpdated, nil
}

func readLayout(path string, latin1 bool) (*layoutFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	var out layoutFile
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decodificar YAML: %w", err)
	}
	return &out, nil
}
