package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
)

func TestWriteOccupancy(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &dto.OccupancyReport{
		Warehouse: dto.WarehouseResponse{DisplayID: "001", Name: "Central", BlocksCount: 2, ShelvesPerBlock: 2, CellsPerShelf: 5},
		Occupied:  2,
		Capacity:  20,
		Percent:   decimal.RequireFromString("10"),
		Rows: []dto.OccupiedCellRow{
			{Code: "001-01-01-001", Block: 1, Shelf: 1, Cell: 1, UnitID: "R1/01/01", RequestNumber: "R1", PlacedBy: "op-1", PlacedAt: &at},
			{Code: "001-02-01-005", Block: 2, Shelf: 1, Cell: 5, UnitID: "R1/01/02", RequestNumber: "R1"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOccupancy(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(occupancySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Código", rows[0][0])
	assert.Equal(t, "001-01-01-001", rows[1][0])
	assert.Equal(t, "R1/01/01", rows[1][4])
	assert.Equal(t, "2025-03-01T10:00:00Z", rows[1][7])
	assert.Equal(t, "5", rows[2][3])

	v, err := f.GetCellValue(summarySheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "10.00", v)
}
