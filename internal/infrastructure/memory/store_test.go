package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

func seedUnit(t *testing.T, s *Store, humanID string) {
	t.Helper()
	require.NoError(t, s.Units().CreateBatch(context.Background(), []*entity.IndividualUnit{
		{ID: humanID, HumanID: humanID, RequestID: "req-1", RequestNumber: "R1"},
	}))
}

func TestStore_RunRollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUnit(t, s, "R1/01/01")
	addr := entity.CellAddress{WarehouseID: "w1", Block: 1, Shelf: 1, Cell: 1}

	boom := errors.New("boom")
	err := s.Run(ctx, func(units repository.UnitRepository, cells repository.CellRepository, records repository.PlacementRecordRepository) error {
		ok, err := units.MarkPlaced(ctx, "R1/01/01", addr, "op", time.Now())
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = cells.Occupy(ctx, addr, "R1/01/01")
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := s.Units().GetByHumanID(ctx, "R1/01/01")
	require.NoError(t, err)
	assert.False(t, u.IsPlaced)
	c, err := s.Cells().Get(ctx, addr)
	require.NoError(t, err)
	assert.True(t, c.IsFree())
}

func TestStore_RunCommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUnit(t, s, "R1/01/01")
	addr := entity.CellAddress{WarehouseID: "w1", Block: 2, Shelf: 3, Cell: 4}

	err := s.Run(ctx, func(units repository.UnitRepository, cells repository.CellRepository, records repository.PlacementRecordRepository) error {
		if _, err := units.MarkPlaced(ctx, "R1/01/01", addr, "op", time.Now()); err != nil {
			return err
		}
		if _, err := cells.Occupy(ctx, addr, "R1/01/01"); err != nil {
			return err
		}
		return records.Append(ctx, &entity.PlacementRecord{ID: 1, Action: entity.PlacementActionPlace, UnitID: "R1/01/01", Address: addr})
	})
	require.NoError(t, err)

	u, _ := s.Units().GetByHumanID(ctx, "R1/01/01")
	require.True(t, u.IsPlaced)
	assert.Equal(t, addr, *u.Cell)
	occupied, _ := s.Cells().ListOccupied(ctx, "w1")
	require.Len(t, occupied, 1)
	all, _ := s.Records().ListAll(ctx)
	assert.Len(t, all, 1)
}

func TestCellRepo_OccupyCondicional(t *testing.T) {
	ctx := context.Background()
	cells := NewStore().Cells()
	addr := entity.CellAddress{WarehouseID: "w1", Block: 1, Shelf: 1, Cell: 1}

	ok, err := cells.Occupy(ctx, addr, "A")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cells.Occupy(ctx, addr, "B")
	require.NoError(t, err)
	assert.False(t, ok, "una celda ocupada no se pisa")

	ok, err = cells.Release(ctx, addr, "B")
	require.NoError(t, err)
	assert.False(t, ok, "solo el ocupante libera")

	ok, err = cells.Release(ctx, addr, "A")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnitRepo_MarkPlacedCondicional(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUnit(t, s, "R1/01/01")
	units := s.Units()
	addr := entity.CellAddress{WarehouseID: "w1", Block: 1, Shelf: 1, Cell: 1}

	ok, err := units.MarkPlaced(ctx, "R1/01/01", addr, "op", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = units.MarkPlaced(ctx, "R1/01/01", addr, "op", time.Now())
	assert.False(t, ok)
	ok, _ = units.MarkPlaced(ctx, "no-existe", addr, "op", time.Now())
	assert.False(t, ok)

	ok, _ = units.MarkUnplaced(ctx, "R1/01/01")
	assert.True(t, ok)
	ok, _ = units.MarkUnplaced(ctx, "R1/01/01")
	assert.False(t, ok)
}

func TestCargoRequestRepo_MaxNumberWithPrefix(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Requests()
	for i, n := range []string{"250101", "250199", "2501100", "2502", "25015X", "25010005", "250199999999999999999999"} {
		require.NoError(t, repo.Create(ctx, &entity.CargoRequest{ID: string(rune('a' + i)), RequestNumber: n}))
	}

	last, err := repo.MaxNumberWithPrefix(ctx, "2501")
	require.NoError(t, err)
	assert.Equal(t, "2501100", last)

	last, err = repo.MaxNumberWithPrefix(ctx, "2412")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestCargoRequestRepo_DuplicadoYCascada(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	req := &entity.CargoRequest{ID: "req-1", RequestNumber: "R1"}
	require.NoError(t, s.Requests().Create(ctx, req))
	err := s.Requests().Create(ctx, &entity.CargoRequest{ID: "req-2", RequestNumber: "R1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	seedUnit(t, s, "R1/01/01")
	require.NoError(t, s.Requests().Delete(ctx, "req-1"))
	u, err := s.Units().GetByHumanID(ctx, "R1/01/01")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestWarehouseRepo_DisplayIDUnico(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Warehouses()
	require.NoError(t, repo.Create(ctx, &entity.Warehouse{ID: "w1", DisplayID: "001"}))
	err := repo.Create(ctx, &entity.Warehouse{ID: "w2", DisplayID: "001"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	require.NoError(t, repo.Create(ctx, &entity.Warehouse{ID: "w3", DisplayID: "002"}))
	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "001", list[0].DisplayID)

	list, _ = repo.List(ctx, 10, 1)
	require.Len(t, list, 1)
	assert.Equal(t, "002", list[0].DisplayID)
}

func TestPlacementRecordRepo_ListFiltrado(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Records()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		wh := "w1"
		if i%2 == 0 {
			wh = "w2"
		}
		require.NoError(t, repo.Append(ctx, &entity.PlacementRecord{
			ID:        int64(i),
			Action:    entity.PlacementActionPlace,
			UnitID:    "U" + string(rune('0'+i)),
			Address:   entity.CellAddress{WarehouseID: wh, Block: 1, Shelf: 1, Cell: i},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := repo.List(ctx, repository.PlacementRecordFilter{WarehouseID: "w1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(5), got[0].ID, "más reciente primero")

	from := base.Add(2 * time.Hour)
	to := base.Add(4 * time.Hour)
	got, _ = repo.List(ctx, repository.PlacementRecordFilter{From: &from, To: &to})
	require.Len(t, got, 2)

	got, _ = repo.List(ctx, repository.PlacementRecordFilter{Limit: 2, Offset: 1})
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].ID)
}
