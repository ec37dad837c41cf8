package entity

import "time"

// CargoRequest solicitud de carga con uno o más tipos de ítem.
// El estado global no se guarda: se deriva siempre del estado de sus unidades.
type CargoRequest struct {
	ID            string
	RequestNumber string
	ItemTypes     []CargoItemType
	CreatedAt     time.Time
}

// TotalUnits suma de cantidades declaradas de todos los tipos de ítem.
func (r *CargoRequest) TotalUnits() int {
	total := 0
	for _, it := range r.ItemTypes {
		total += it.Quantity
	}
	return total
}

// ItemType busca un tipo de ítem por índice ("01").
func (r *CargoRequest) ItemType(index string) (*CargoItemType, bool) {
	for i := range r.ItemTypes {
		if r.ItemTypes[i].Index == index {
			return &r.ItemTypes[i], true
		}
	}
	return nil, false
}

// CargoItemType tipo de ítem dentro de una solicitud; se expande en Quantity unidades individuales.
type CargoItemType struct {
	ID        string
	RequestID string
	Index     string
	Name      string
	Quantity  int
}

// IndividualUnit unidad física individual, identificada por "{solicitud}/{tipo}/{unidad}".
// Invariante: IsPlaced ⇔ Cell != nil ⇔ la celda referenciada apunta de vuelta a HumanID.
type IndividualUnit struct {
	ID            string
	HumanID       string
	RequestID     string
	RequestNumber string
	ItemTypeIndex string
	UnitIndex     string
	IsPlaced      bool
	Cell          *CellAddress
	PlacedBy      string
	PlacedAt      *time.Time
}

// MarkPlaced aplica la transición unplaced -> placed en memoria.
func (u *IndividualUnit) MarkPlaced(addr CellAddress, operatorID string, at time.Time) {
	a := addr
	t := at
	u.IsPlaced = true
	u.Cell = &a
	u.PlacedBy = operatorID
	u.PlacedAt = &t
}

// MarkUnplaced aplica la transición placed -> unplaced en memoria.
func (u *IndividualUnit) MarkUnplaced() {
	u.IsPlaced = false
	u.Cell = nil
	u.PlacedBy = ""
	u.PlacedAt = nil
}
