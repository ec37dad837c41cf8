package entity

import (
	"fmt"
	"time"
)

// CellAddress clave compuesta de una celda: bodega + bloque + estante + celda.
type CellAddress struct {
	WarehouseID string `json:"warehouse_id"`
	Block       int    `json:"block"`
	Shelf       int    `json:"shelf"`
	Cell        int    `json:"cell"`
}

// String representación de depuración (no es el código canónico; ver cellcode.Encode).
func (a CellAddress) String() string {
	return fmt.Sprintf("%s:%d/%d/%d", a.WarehouseID, a.Block, a.Shelf, a.Cell)
}

// Cell fila del índice de ocupación. OccupiedBy es una referencia no propietaria
// al HumanID de la unidad; vacío significa celda libre.
type Cell struct {
	Address    CellAddress
	OccupiedBy string
	UpdatedAt  time.Time
}

// IsFree indica si la celda no tiene unidad asignada.
func (c *Cell) IsFree() bool {
	return c == nil || c.OccupiedBy == ""
}
