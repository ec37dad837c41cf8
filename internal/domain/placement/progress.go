package placement

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// ItemTypeProgress avance de un tipo de ítem.
type ItemTypeProgress struct {
	Index   string
	Name    string
	Placed  int
	Total   int
	Percent decimal.Decimal
}

// Progress avance de ubicación de una solicitud. Siempre se calcula; nunca se persiste.
type Progress struct {
	RequestNumber string
	TotalUnits    int
	PlacedUnits   int
	Percent       decimal.Decimal
	PerItemType   []ItemTypeProgress
	OverallStatus entity.PlacementStatus
}

// DeriveStatus estado global como función pura de los conteos.
func DeriveStatus(placed, total int) entity.PlacementStatus {
	switch {
	case placed == 0:
		return entity.StatusAwaitingPlacement
	case placed == total:
		return entity.StatusFullyPlaced
	default:
		return entity.StatusPartiallyPlaced
	}
}

// Percent porcentaje placed/total con 2 decimales (0 si total es 0).
func Percent(placed, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(placed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// ComputeProgress recalcula el avance a partir de la solicitud y sus unidades.
// Total sale de las cantidades declaradas; placed cuenta unidades con IsPlaced.
func ComputeProgress(req *entity.CargoRequest, units []*entity.IndividualUnit) *Progress {
	placedByType := lo.CountValuesBy(
		lo.Filter(units, func(u *entity.IndividualUnit, _ int) bool { return u.IsPlaced }),
		func(u *entity.IndividualUnit) string { return u.ItemTypeIndex },
	)

	p := &Progress{
		RequestNumber: req.RequestNumber,
		TotalUnits:    req.TotalUnits(),
		PerItemType:   make([]ItemTypeProgress, 0, len(req.ItemTypes)),
	}
	for _, it := range req.ItemTypes {
		placed := placedByType[it.Index]
		p.PlacedUnits += placed
		p.PerItemType = append(p.PerItemType, ItemTypeProgress{
			Index:   it.Index,
			Name:    it.Name,
			Placed:  placed,
			Total:   it.Quantity,
			Percent: Percent(placed, it.Quantity),
		})
	}
	p.Percent = Percent(p.PlacedUnits, p.TotalUnits)
	p.OverallStatus = DeriveStatus(p.PlacedUnits, p.TotalUnits)
	return p
}
