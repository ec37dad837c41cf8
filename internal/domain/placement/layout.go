package placement

import (
	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

// ValidateAddress verifica bloque/estante/celda contra el layout efectivo de la bodega.
// El mensaje nombra el componente exacto que falló y el rango permitido.
func ValidateAddress(w *entity.Warehouse, block, shelf, cell int) error {
	l := w.Layout()
	if block < 1 || block > l.Blocks {
		return domain.Errorf(domain.KindOutOfRange,
			"bloque %d fuera de rango para la bodega %s (1-%d)", block, w.DisplayID, l.Blocks)
	}
	if shelf < 1 || shelf > l.ShelvesPerBlock {
		return domain.Errorf(domain.KindOutOfRange,
			"estante %d fuera de rango para la bodega %s (1-%d)", shelf, w.DisplayID, l.ShelvesPerBlock)
	}
	if cell < 1 || cell > l.CellsPerShelf {
		return domain.Errorf(domain.KindOutOfRange,
			"celda %d fuera de rango para la bodega %s (1-%d)", cell, w.DisplayID, l.CellsPerShelf)
	}
	return nil
}
