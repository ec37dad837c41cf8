package placement_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/bootstrap"
	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	domplacement "github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/internal/infrastructure/idgen"
	"github.com/jhoicas/cargo-placement/internal/infrastructure/memory"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

type fixture struct {
	ctx       context.Context
	c         *bootstrap.Components
	store     *memory.Store
	warehouse *entity.Warehouse
	operator  string
}

// newFixture bodega "001" de 2 bloques × 3 estantes × 4 celdas y la solicitud R1 (2 cajas + 2 pallets).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids, err := idgen.NewSnowflake(1)
	require.NoError(t, err)
	c, store := bootstrap.Memory(ids, logger.Nop())

	ctx := context.Background()
	w := &entity.Warehouse{
		ID:              "w-001",
		DisplayID:       "001",
		Name:            gofakeit.Company(),
		BlocksCount:     2,
		ShelvesPerBlock: 3,
		CellsPerShelf:   4,
	}
	require.NoError(t, store.Warehouses().Create(ctx, w))

	_, err = c.Registry.Register(ctx, "R1", []placement.ItemTypeInput{
		{Index: "1", Name: "Cajas", Quantity: 2},
		{Index: "2", Name: "Pallets", Quantity: 2},
	})
	require.NoError(t, err)

	return &fixture{ctx: ctx, c: c, store: store, warehouse: w, operator: gofakeit.Username()}
}

func (f *fixture) addr(block, shelf, cell int) entity.CellAddress {
	return entity.CellAddress{WarehouseID: f.warehouse.ID, Block: block, Shelf: shelf, Cell: cell}
}

func (f *fixture) unit(t *testing.T, id string) *entity.IndividualUnit {
	t.Helper()
	u, err := f.store.Units().GetByHumanID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u, id)
	return u
}

func (f *fixture) occupant(t *testing.T, a entity.CellAddress) string {
	t.Helper()
	occ, err := f.c.Layout.Occupant(f.ctx, a)
	require.NoError(t, err)
	return occ
}

func (f *fixture) logLen(t *testing.T) int {
	t.Helper()
	all, err := f.store.Records().ListAll(f.ctx)
	require.NoError(t, err)
	return len(all)
}

// ─── CargoUnitRegistry ──────────────────────────────────────────────────────

func TestRegistry_RegisterExpandeUnidades(t *testing.T) {
	f := newFixture(t)

	units, err := f.c.Registry.Register(f.ctx, "R2", []placement.ItemTypeInput{{Index: "01", Name: "Cajas", Quantity: 3}})
	require.NoError(t, err)
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.HumanID)
		assert.False(t, u.IsPlaced)
	}
	assert.Equal(t, []string{"R2/01/01", "R2/01/02", "R2/01/03"}, ids)

	p, err := f.c.Aggregator.Progress(f.ctx, "R2")
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalUnits)
	assert.Equal(t, entity.StatusAwaitingPlacement, p.OverallStatus)
}

func TestRegistry_RegisterDuplicada(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Registry.Register(f.ctx, "R1", []placement.ItemTypeInput{{Index: "1", Quantity: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestRegistry_RegisterValidaEntrada(t *testing.T) {
	f := newFixture(t)
	cases := map[string]struct {
		number string
		types  []placement.ItemTypeInput
	}{
		"sin número":        {"", []placement.ItemTypeInput{{Index: "1", Quantity: 1}}},
		"número con barra":  {"R/9", []placement.ItemTypeInput{{Index: "1", Quantity: 1}}},
		"sin tipos":         {"R9", nil},
		"cantidad cero":     {"R9", []placement.ItemTypeInput{{Index: "1", Quantity: 0}}},
		"cantidad excesiva": {"R9", []placement.ItemTypeInput{{Index: "1", Quantity: placement.MaxItemQuantity + 1}}},
		"índice repetido":   {"R9", []placement.ItemTypeInput{{Index: "1", Quantity: 1}, {Index: "01", Quantity: 1}}},
		"índice inválido":   {"R9", []placement.ItemTypeInput{{Index: "x", Quantity: 1}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.c.Registry.Register(f.ctx, tc.number, tc.types)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
	exists, err := f.store.Requests().ExistsNumber(f.ctx, "R9")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegistry_FindUnitSegmentos(t *testing.T) {
	f := newFixture(t)

	u, err := f.c.Registry.FindUnit(f.ctx, "R1/1/2")
	require.NoError(t, err)
	assert.Equal(t, "R1/01/02", u.HumanID)

	cases := map[string]string{
		"R1":       domain.SegmentFormat,
		"R9/01/01": domain.SegmentRequest,
		"R1/05/01": domain.SegmentItemType,
		"R1/01/03": domain.SegmentUnit,
		"R1/01/xx": domain.SegmentUnit,
	}
	for id, segment := range cases {
		_, err := f.c.Registry.FindUnit(f.ctx, id)
		require.Error(t, err, id)
		de := domain.AsError(err)
		assert.Equal(t, domain.KindNotFound, de.Kind, id)
		assert.Equal(t, segment, de.Segment, id)
	}
}

func TestRegistry_FindPreferredOrGenerate(t *testing.T) {
	f := newFixture(t)

	n, err := f.c.Registry.FindPreferredOrGenerate(f.ctx, " ABC-1 ")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", n)

	_, err = f.c.Registry.FindPreferredOrGenerate(f.ctx, "R1")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	prefix := time.Now().Format("0601")
	n, err = f.c.Registry.FindPreferredOrGenerate(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, prefix+"01", n)

	_, err = f.c.Registry.Register(f.ctx, prefix+"01", []placement.ItemTypeInput{{Index: "1", Quantity: 1}})
	require.NoError(t, err)
	n, err = f.c.Registry.FindPreferredOrGenerate(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, prefix+"02", n)
}

func TestRegistry_NumeroPreferidoLargoNoBloqueaLaSecuencia(t *testing.T) {
	f := newFixture(t)
	types := []placement.ItemTypeInput{{Index: "1", Name: "Cajas", Quantity: 1}}
	prefix := time.Now().Format("0601")

	long := prefix + "99999999999999999999"
	got, _, err := f.c.Registry.RegisterWithNumber(f.ctx, long, types)
	require.NoError(t, err)
	require.Equal(t, long, got)

	var generated []string
	for i := 0; i < 3; i++ {
		n, _, err := f.c.Registry.RegisterWithNumber(f.ctx, "", types)
		require.NoError(t, err, "alta automática #%d", i+1)
		generated = append(generated, n)
	}
	assert.Equal(t, []string{prefix + "01", prefix + "02", prefix + "03"}, generated)
}

func TestRegistry_RegisterWithNumber(t *testing.T) {
	f := newFixture(t)
	types := []placement.ItemTypeInput{{Index: "1", Name: "Cajas", Quantity: 1}}

	first, units, err := f.c.Registry.RegisterWithNumber(f.ctx, "", types)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, first+"/01/01", units[0].HumanID)

	second, _, err := f.c.Registry.RegisterWithNumber(f.ctx, "", types)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, _, err = f.c.Registry.RegisterWithNumber(f.ctx, "R1", types)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegistry_DeleteRequestLiberaCeldas(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/02/01", "001-01-01-002", f.operator, "")
	require.NoError(t, err)

	freed, err := f.c.Registry.DeleteRequest(f.ctx, "R1", f.operator)
	require.NoError(t, err)
	assert.Equal(t, 2, freed)

	assert.Empty(t, f.occupant(t, f.addr(1, 1, 1)))
	assert.Empty(t, f.occupant(t, f.addr(1, 1, 2)))
	_, err = f.c.Registry.Request(f.ctx, "R1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 4, f.logLen(t), "2 PLACE + 2 UNPLACE")

	// El log sigue siendo coherente con el estado tras la baja.
	report, err := f.c.Ledger.Audit(f.ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

// ─── PlacementService / PlacementLedger ─────────────────────────────────────

func TestService_PlaceByCodeActualizaAvance(t *testing.T) {
	f := newFixture(t)

	p, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PlacedUnits)
	assert.Equal(t, 4, p.TotalUnits)
	assert.True(t, decimal.NewFromInt(25).Equal(p.Percent))
	assert.Equal(t, entity.StatusPartiallyPlaced, p.OverallStatus)

	u := f.unit(t, "R1/01/01")
	assert.True(t, u.IsPlaced)
	require.NotNil(t, u.Cell)
	assert.Equal(t, f.addr(1, 1, 1), *u.Cell)
	assert.Equal(t, f.operator, u.PlacedBy)
	assert.Equal(t, "R1/01/01", f.occupant(t, f.addr(1, 1, 1)))
	assert.Equal(t, 1, f.logLen(t))
}

func TestService_PlaceTodasLasUnidades(t *testing.T) {
	f := newFixture(t)
	ids := []string{"R1/01/01", "R1/01/02", "R1/02/01", "R1/02/02"}
	var p *domplacement.Progress
	for i, id := range ids {
		res, err := f.c.Service.PlaceByCode(f.ctx, id, fmt.Sprintf("001-02-03-%03d", i+1), f.operator, "")
		require.NoError(t, err)
		p = res
	}
	assert.Equal(t, 4, p.PlacedUnits)
	assert.True(t, decimal.NewFromInt(100).Equal(p.Percent))
	assert.Equal(t, entity.StatusFullyPlaced, p.OverallStatus)
	for _, it := range p.PerItemType {
		assert.Equal(t, it.Total, it.Placed)
	}
}

func TestService_CeldaOcupada(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)

	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/02", "001-01-01-001", f.operator, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCellOccupied)
	assert.Contains(t, err.Error(), "R1/01/01")
	assert.Contains(t, err.Error(), "001-01-01-001")

	assert.False(t, f.unit(t, "R1/01/02").IsPlaced)
	assert.Equal(t, 1, f.logLen(t))
}

func TestService_UnidadYaUbicada(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)

	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-002", f.operator, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnitAlreadyPlaced)
	assert.Contains(t, err.Error(), "001-01-01-001")
	assert.Empty(t, f.occupant(t, f.addr(1, 1, 2)))

	_, same, err := f.c.Service.RetryOutcome(f.ctx, "R1/01/01", "001-01-01-001", "")
	require.NoError(t, err)
	assert.True(t, same)
	_, same, err = f.c.Service.RetryOutcome(f.ctx, "R1/01/01", "001-01-01-002", "")
	require.NoError(t, err)
	assert.False(t, same)
}

func TestService_ErroresDeDireccion(t *testing.T) {
	f := newFixture(t)
	cases := map[string]domain.Kind{
		"001-03-01-001": domain.KindOutOfRange,
		"001-01-04-001": domain.KindOutOfRange,
		"001-01-01-005": domain.KindOutOfRange,
		"009-01-01-001": domain.KindUnknownWarehouse,
		"A-01-01-001":   domain.KindUnknownFormat,
		"Б1-П1-Я1":      domain.KindNoDefaultWarehouse,
	}
	for code, kind := range cases {
		_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", code, f.operator, "")
		require.Error(t, err, code)
		assert.Equal(t, kind, domain.KindOf(err), code)
	}
	assert.False(t, f.unit(t, "R1/01/01").IsPlaced)
	assert.Zero(t, f.logLen(t))
}

func TestService_BodegaDesconocidaNombraElNumero(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "009-01-01-001", f.operator, "")
	require.ErrorIs(t, err, domain.ErrUnknownWarehouse)
	assert.Contains(t, err.Error(), "009")

	_, err = f.c.Service.VerifyCell(f.ctx, "999-01-01-001", "")
	require.ErrorIs(t, err, domain.ErrUnknownWarehouse)
	assert.Contains(t, err.Error(), "999")
}

func TestService_CodigoLegadoConBodegaDeSesion(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "б2-п3-я4", f.operator, f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, "R1/01/01", f.occupant(t, f.addr(2, 3, 4)))

	code, err := f.c.Service.CanonicalCode(f.ctx, "Б2-П3-Я4", f.warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, "001-02-03-004", code)
}

func TestService_DisplayIDSinCeros(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "1-1-1-3", f.operator, "")
	require.NoError(t, err)
	assert.Equal(t, "R1/01/01", f.occupant(t, f.addr(1, 1, 3)))
}

func TestService_Unplace(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)

	p, err := f.c.Service.Unplace(f.ctx, "R1/01/01", f.operator)
	require.NoError(t, err)
	assert.Zero(t, p.PlacedUnits)
	assert.Equal(t, entity.StatusAwaitingPlacement, p.OverallStatus)
	assert.Empty(t, f.occupant(t, f.addr(1, 1, 1)))
	assert.Nil(t, f.unit(t, "R1/01/01").Cell)

	_, err = f.c.Service.Unplace(f.ctx, "R1/01/01", f.operator)
	assert.ErrorIs(t, err, domain.ErrNotPlaced)

	history, err := f.c.Ledger.History(f.ctx, repository.PlacementRecordFilter{UnitID: "R1/01/01"})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.PlacementActionUnplace, history[0].Action)
	assert.Equal(t, entity.PlacementActionPlace, history[1].Action)

	// La celda liberada se puede volver a usar.
	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/02", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
}

func TestService_VerifyCell(t *testing.T) {
	f := newFixture(t)
	info, err := f.c.Service.VerifyCell(f.ctx, "001-01-01-001", "")
	require.NoError(t, err)
	assert.False(t, info.IsOccupied)
	assert.Equal(t, "001-01-01-001", info.Code)
	assert.Equal(t, f.warehouse.ID, info.WarehouseID)

	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	info, err = f.c.Service.VerifyCell(f.ctx, "001-01-01-001", "")
	require.NoError(t, err)
	assert.True(t, info.IsOccupied)
	assert.Equal(t, "R1/01/01", info.OccupantUnitID)
}

func TestCodec_RenderParseIdaYVuelta(t *testing.T) {
	f := newFixture(t)
	a := f.addr(2, 3, 4)
	code, err := f.c.Codec.Render(f.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "001-02-03-004", code)

	back, err := f.c.Codec.Parse(f.ctx, code, "")
	require.NoError(t, err)
	assert.Equal(t, a, back)

	_, err = f.c.Codec.Render(f.ctx, f.addr(3, 1, 1))
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestLayout_IsFreeYValidateAddress(t *testing.T) {
	f := newFixture(t)
	free, err := f.c.Layout.IsFree(f.ctx, f.warehouse.ID, 1, 1, 1)
	require.NoError(t, err)
	assert.True(t, free)

	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	free, err = f.c.Layout.IsFree(f.ctx, f.warehouse.ID, 1, 1, 1)
	require.NoError(t, err)
	assert.False(t, free)

	assert.ErrorIs(t, f.c.Layout.ValidateAddress(f.ctx, "nope", 1, 1, 1), domain.ErrUnknownWarehouse)
	assert.ErrorIs(t, f.c.Layout.ValidateAddress(f.ctx, f.warehouse.ID, 1, 1, 9), domain.ErrOutOfRange)
}

// ─── Concurrencia ───────────────────────────────────────────────────────────

func TestLedger_ConcurrenciaMismaCelda(t *testing.T) {
	f := newFixture(t)
	const n = 12
	_, err := f.c.Registry.Register(f.ctx, "R2", []placement.ItemTypeInput{{Index: "1", Quantity: n}})
	require.NoError(t, err)

	target := f.addr(2, 2, 2)
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.c.Ledger.Place(f.ctx, fmt.Sprintf("R2/01/%02d", i+1), target, f.operator)
		}(i)
	}
	wg.Wait()

	ok, occupied := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.KindOf(err) == domain.KindCellOccupied:
			occupied++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, occupied)

	p, err := f.c.Aggregator.Progress(f.ctx, "R2")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PlacedUnits)
	assert.Equal(t, 1, f.logLen(t))
}

func TestLedger_ConcurrenciaMismaUnidad(t *testing.T) {
	f := newFixture(t)
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.c.Ledger.Place(f.ctx, "R1/01/01", f.addr(1, 1+i%3, 1+i%4), f.operator)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrUnitAlreadyPlaced)
	}
	assert.Equal(t, 1, ok)

	occupied, err := f.store.Cells().ListAllOccupied(f.ctx)
	require.NoError(t, err)
	assert.Len(t, occupied, 1)
}

// ─── Reconstrucción desde el log ────────────────────────────────────────────

func TestLedger_ReconstructReparaDivergencias(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	_, err = f.c.Service.PlaceByCode(f.ctx, "R1/01/02", "001-01-01-002", f.operator, "")
	require.NoError(t, err)

	// Divergencias escritas por fuera del ledger.
	ok, err := f.store.Units().MarkUnplaced(f.ctx, "R1/01/01")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.store.Cells().Release(f.ctx, f.addr(1, 1, 2), "R1/01/02")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.store.Cells().Occupy(f.ctx, f.addr(2, 1, 1), "fantasma")
	require.NoError(t, err)
	require.True(t, ok)

	audit, err := f.c.Ledger.Audit(f.ctx)
	require.NoError(t, err)
	assert.True(t, audit.DryRun)
	assert.False(t, audit.Consistent())
	assert.Equal(t, []string{"R1/01/01"}, audit.UnitsRestored)
	assert.Equal(t, []entity.CellAddress{f.addr(2, 1, 1)}, audit.CellsCleared)
	assert.Equal(t, []entity.CellAddress{f.addr(1, 1, 2)}, audit.CellsRestored)
	// Audit no escribe.
	assert.False(t, f.unit(t, "R1/01/01").IsPlaced)
	assert.Equal(t, "fantasma", f.occupant(t, f.addr(2, 1, 1)))

	report, err := f.c.Ledger.Reconstruct(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RecordsReplayed)
	assert.False(t, report.Consistent())

	u := f.unit(t, "R1/01/01")
	assert.True(t, u.IsPlaced)
	assert.Equal(t, f.operator, u.PlacedBy)
	assert.Equal(t, "R1/01/02", f.occupant(t, f.addr(1, 1, 2)))
	assert.Empty(t, f.occupant(t, f.addr(2, 1, 1)))

	again, err := f.c.Ledger.Reconstruct(f.ctx)
	require.NoError(t, err)
	assert.True(t, again.Consistent())
}

func TestLedger_ReconstructLimpiaUnidadSinRespaldo(t *testing.T) {
	f := newFixture(t)
	ok, err := f.store.Units().MarkPlaced(f.ctx, "R1/02/02", f.addr(1, 2, 3), "otro", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	report, err := f.c.Ledger.Reconstruct(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"R1/02/02"}, report.UnitsCleared)
	assert.False(t, f.unit(t, "R1/02/02").IsPlaced)
}

func TestLedger_DescribeBodegaInexistente(t *testing.T) {
	f := newFixture(t)
	a := entity.CellAddress{WarehouseID: "borrada", Block: 1, Shelf: 1, Cell: 1}
	assert.Equal(t, a.String(), f.c.Ledger.Describe(f.ctx, a))
	assert.Equal(t, "001-01-01-001", f.c.Service.DescribeCell(f.ctx, f.addr(1, 1, 1)))
}

func TestLedger_ReconstructIgnoraRegistrosDeUnidadesBorradas(t *testing.T) {
	f := newFixture(t)
	// PLACE anterior de una unidad que ya no existe, sobre la misma celda que luego se ocupa legítimamente.
	require.NoError(t, f.store.Records().Append(f.ctx, &entity.PlacementRecord{
		ID:        1,
		Action:    entity.PlacementActionPlace,
		UnitID:    "BORRADA/01/01",
		Address:   f.addr(1, 1, 1),
		CreatedAt: time.Now().Add(-time.Hour),
	}))
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)

	report, err := f.c.Ledger.Reconstruct(f.ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "el registro huérfano no debe desplazar a la ubicación vigente")
	assert.Equal(t, []string{"BORRADA/01/01"}, report.OrphanRecords)
	assert.Equal(t, 1, report.RecordsReplayed)
	assert.True(t, f.unit(t, "R1/01/01").IsPlaced)
	assert.Equal(t, "R1/01/01", f.occupant(t, f.addr(1, 1, 1)))
}

func TestLedger_OrphanRecordsExcluyeUnidadesBorradasYaLiberadas(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Service.PlaceByCode(f.ctx, "R1/01/01", "001-01-01-001", f.operator, "")
	require.NoError(t, err)
	freed, err := f.c.Registry.DeleteRequest(f.ctx, "R1", f.operator)
	require.NoError(t, err)
	require.Equal(t, 1, freed)

	report, err := f.c.Ledger.Reconstruct(f.ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Empty(t, report.OrphanRecords)
	assert.Empty(t, f.occupant(t, f.addr(1, 1, 1)))
}
