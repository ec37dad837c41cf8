package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
)

const (
	occupancySheet = "Ocupacion"
	summarySheet   = "Resumen"
)

var occupancyHeaders = []string{"Código", "Bloque", "Estante", "Celda", "Unidad", "Solicitud", "Ubicada por", "Fecha"}

// WriteOccupancy escribe el reporte de ocupación como xlsx: una hoja con una fila por celda ocupada
// y una hoja de resumen con capacidad y porcentaje.
func WriteOccupancy(w io.Writer, report *dto.OccupancyReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", occupancySheet); err != nil {
		return fmt.Errorf("renombrar hoja: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("estilo encabezado: %w", err)
	}
	for i, h := range occupancyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(occupancySheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(occupancySheet, 1, 1, header); err != nil {
		return err
	}

	for i, row := range report.Rows {
		r := i + 2
		placedAt := ""
		if row.PlacedAt != nil {
			placedAt = row.PlacedAt.UTC().Format(time.RFC3339)
		}
		values := []any{row.Code, row.Block, row.Shelf, row.Cell, row.UnitID, row.RequestNumber, row.PlacedBy, placedAt}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(occupancySheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(occupancySheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(occupancySheet, "E", "H", 22); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("crear hoja resumen: %w", err)
	}
	summary := [][2]any{
		{"Bodega", report.Warehouse.DisplayID},
		{"Nombre", report.Warehouse.Name},
		{"Bloques", report.Warehouse.BlocksCount},
		{"Estantes por bloque", report.Warehouse.ShelvesPerBlock},
		{"Celdas por estante", report.Warehouse.CellsPerShelf},
		{"Capacidad", report.Capacity},
		{"Ocupadas", report.Occupied},
		{"Ocupación %", report.Percent.StringFixed(2)},
	}
	for i, kv := range summary {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("escribir xlsx: %w", err)
	}
	return nil
}
