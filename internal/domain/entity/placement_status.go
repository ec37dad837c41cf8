package entity

// PlacementStatus estado global derivado de una solicitud de carga.
type PlacementStatus string

const (
	StatusAwaitingPlacement PlacementStatus = "awaiting_placement"
	StatusPartiallyPlaced   PlacementStatus = "partially_placed"
	StatusFullyPlaced       PlacementStatus = "fully_placed"
)
