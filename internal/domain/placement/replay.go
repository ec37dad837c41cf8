package placement

import (
	"sort"

	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// ReplayState estado derivado del log: ocupación de celdas y celda actual de cada unidad.
type ReplayState struct {
	Cells map[entity.CellAddress]string // celda -> HumanID
	Units map[string]UnitPlacement      // HumanID -> ubicación vigente
	// Skipped registros que no pudieron aplicarse (doble ubicación, unplace de unidad libre...).
	Skipped []entity.PlacementRecord
}

// UnitPlacement ubicación vigente de una unidad según el log.
type UnitPlacement struct {
	Address    entity.CellAddress
	OperatorID string
	Record     entity.PlacementRecord
}

// Replay reconstruye el estado aplicando el log en orden de ID. Es idempotente y puro.
// Un PLACE sobre una unidad ya ubicada o una celda ocupada se descarta (primero gana);
// un UNPLACE solo libera si coincide con la ubicación vigente.
func Replay(records []entity.PlacementRecord) *ReplayState {
	sorted := make([]entity.PlacementRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	st := &ReplayState{
		Cells: make(map[entity.CellAddress]string),
		Units: make(map[string]UnitPlacement),
	}
	for _, rec := range sorted {
		switch rec.Action {
		case entity.PlacementActionPlace:
			if _, placed := st.Units[rec.UnitID]; placed {
				st.Skipped = append(st.Skipped, rec)
				continue
			}
			if _, occupied := st.Cells[rec.Address]; occupied {
				st.Skipped = append(st.Skipped, rec)
				continue
			}
			st.Cells[rec.Address] = rec.UnitID
			st.Units[rec.UnitID] = UnitPlacement{Address: rec.Address, OperatorID: rec.OperatorID, Record: rec}
		case entity.PlacementActionUnplace:
			cur, placed := st.Units[rec.UnitID]
			if !placed || cur.Address != rec.Address {
				st.Skipped = append(st.Skipped, rec)
				continue
			}
			delete(st.Units, rec.UnitID)
			delete(st.Cells, cur.Address)
		default:
			st.Skipped = append(st.Skipped, rec)
		}
	}
	return st
}
