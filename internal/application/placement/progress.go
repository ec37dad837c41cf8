package placement

import (
	"context"
	"strings"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

// PlacementProgressAggregator calcula el avance de una solicitud leyendo la tabla de unidades
// en cada llamada. No hay contador persistido que pueda desincronizarse.
type PlacementProgressAggregator struct {
	requests repository.CargoRequestRepository
	units    repository.UnitRepository
}

// NewPlacementProgressAggregator construye el agregador.
func NewPlacementProgressAggregator(requests repository.CargoRequestRepository, units repository.UnitRepository) *PlacementProgressAggregator {
	return &PlacementProgressAggregator{requests: requests, units: units}
}

// Progress devuelve totales, avance por tipo de ítem y estado global derivado.
func (a *PlacementProgressAggregator) Progress(ctx context.Context, requestNumber string) (*placement.Progress, error) {
	requestNumber = strings.TrimSpace(requestNumber)
	req, err := a.requests.GetByNumber(ctx, requestNumber)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.NotFoundf(domain.SegmentRequest, "solicitud %s no encontrada", requestNumber)
	}
	units, err := a.units.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return placement.ComputeProgress(req, units), nil
}
