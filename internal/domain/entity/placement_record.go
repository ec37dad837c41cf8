package entity

import "time"

// Acciones del log de ubicaciones.
const (
	PlacementActionPlace   = "PLACE"
	PlacementActionUnplace = "UNPLACE"
)

// PlacementRecord entrada inmutable del log append-only de ubicaciones.
// ID es un snowflake: ordenar por ID reproduce el orden de escritura.
type PlacementRecord struct {
	ID         int64
	Action     string
	UnitID     string
	Address    CellAddress
	OperatorID string
	CreatedAt  time.Time
}
