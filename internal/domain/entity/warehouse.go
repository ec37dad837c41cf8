package entity

import "time"

// Dimensiones por defecto cuando la bodega no tiene metadatos de layout.
// Es un fallback explícito: la ubicación no se bloquea por configuración faltante,
// pero las coordenadas siguen validándose contra estos límites.
const (
	DefaultBlocks          = 10
	DefaultShelvesPerBlock = 10
	DefaultCellsPerShelf   = 100
)

// Layout dimensiones direccionables de una bodega (bloques × estantes × celdas).
type Layout struct {
	Blocks          int
	ShelvesPerBlock int
	CellsPerShelf   int
}

// DefaultLayout layout aplicado a bodegas sin dimensiones configuradas.
var DefaultLayout = Layout{
	Blocks:          DefaultBlocks,
	ShelvesPerBlock: DefaultShelvesPerBlock,
	CellsPerShelf:   DefaultCellsPerShelf,
}

// Warehouse representa una bodega física con celdas direccionables.
// DisplayID es el número corto de 3 dígitos (ej. "001") que aparece en los códigos QR.
type Warehouse struct {
	ID              string
	DisplayID       string
	Name            string
	BlocksCount     int
	ShelvesPerBlock int
	CellsPerShelf   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasLayout indica si la bodega tiene las tres dimensiones configuradas.
func (w *Warehouse) HasLayout() bool {
	return w.BlocksCount > 0 && w.ShelvesPerBlock > 0 && w.CellsPerShelf > 0
}

// Layout devuelve las dimensiones efectivas (las configuradas o DefaultLayout).
func (w *Warehouse) Layout() Layout {
	if !w.HasLayout() {
		return DefaultLayout
	}
	return Layout{
		Blocks:          w.BlocksCount,
		ShelvesPerBlock: w.ShelvesPerBlock,
		CellsPerShelf:   w.CellsPerShelf,
	}
}

// Capacity total de celdas del layout efectivo.
func (w *Warehouse) Capacity() int {
	l := w.Layout()
	return l.Blocks * l.ShelvesPerBlock * l.CellsPerShelf
}
