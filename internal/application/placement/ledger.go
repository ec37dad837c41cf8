package placement

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/cellcode"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// errDryRun fuerza el rollback de la transacción de Audit.
var errDryRun = errors.New("dry run")

// PlacementLedger registro autoritativo de qué unidad ocupa qué celda.
// Garantiza como máximo una unidad por celda y una celda por unidad.
type PlacementLedger struct {
	txRunner TxRunner
	records  repository.PlacementRecordRepository
	layout   *WarehouseLayout
	ids      RecordIDGenerator
	now      Clock
	log      *logger.Logger
}

// NewPlacementLedger construye el ledger.
func NewPlacementLedger(
	txRunner TxRunner,
	records repository.PlacementRecordRepository,
	layout *WarehouseLayout,
	ids RecordIDGenerator,
	log *logger.Logger,
) *PlacementLedger {
	return &PlacementLedger{
		txRunner: txRunner,
		records:  records,
		layout:   layout,
		ids:      ids,
		now:      time.Now,
		log:      log,
	}
}

// Place ubica la unidad en la celda en una sola transacción: marca la unidad (precondición no ubicada),
// ocupa la celda (precondición libre) y agrega el registro al log. Si algo falla no se escribe nada.
func (l *PlacementLedger) Place(ctx context.Context, unitID string, addr entity.CellAddress, operatorID string) (*entity.PlacementRecord, error) {
	w, err := l.layout.Warehouse(ctx, addr.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := placement.ValidateAddress(w, addr.Block, addr.Shelf, addr.Cell); err != nil {
		return nil, err
	}
	code := cellcode.Encode(w.DisplayID, addr.Block, addr.Shelf, addr.Cell)

	now := l.now()
	var rec *entity.PlacementRecord
	var alreadyAt *entity.CellAddress
	err = l.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error {
		ok, err := units.MarkPlaced(ctx, unitID, addr, operatorID, now)
		if err != nil {
			return err
		}
		if !ok {
			current, err := placeRejected(ctx, units, unitID)
			alreadyAt = current
			return err
		}

		ok, err = cells.Occupy(ctx, addr, unitID)
		if err != nil {
			return err
		}
		if !ok {
			occupant := ""
			if c, err := cells.Get(ctx, addr); err == nil && c != nil {
				occupant = c.OccupiedBy
			}
			return domain.Errorf(domain.KindCellOccupied, "la celda %s ya está ocupada por la unidad %s", code, occupant)
		}

		rec = &entity.PlacementRecord{
			ID:         l.ids.NextID(),
			Action:     entity.PlacementActionPlace,
			UnitID:     unitID,
			Address:    addr,
			OperatorID: operatorID,
			CreatedAt:  now,
		}
		return records.Append(ctx, rec)
	})
	if err != nil {
		if alreadyAt != nil {
			// El código de la celda actual se resuelve fuera de la transacción.
			return nil, domain.Errorf(domain.KindUnitAlreadyPlaced,
				"la unidad %s ya está ubicada en %s", unitID, l.describe(ctx, *alreadyAt))
		}
		return nil, err
	}

	l.log.Info().
		Str("unit_id", unitID).
		Str("cell", code).
		Str("operator_id", operatorID).
		Int64("record_id", rec.ID).
		Msg("unidad ubicada")
	return rec, nil
}

// placeRejected distingue unidad inexistente de unidad ya ubicada tras un MarkPlaced fallido.
// Si ya estaba ubicada devuelve también su celda actual.
func placeRejected(ctx context.Context, units repository.UnitRepository, unitID string) (*entity.CellAddress, error) {
	u, err := units.GetByHumanID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundf(domain.SegmentUnit, "unidad %s no encontrada", unitID)
	}
	if u.Cell == nil {
		return nil, domain.Errorf(domain.KindUnitAlreadyPlaced, "la unidad %s ya está ubicada", unitID)
	}
	return u.Cell, domain.ErrUnitAlreadyPlaced
}

// Unplace libera ambos lados del vínculo unidad↔celda y registra UNPLACE.
func (l *PlacementLedger) Unplace(ctx context.Context, unitID, operatorID string) (*entity.IndividualUnit, error) {
	now := l.now()
	var unit *entity.IndividualUnit
	err := l.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error {
		u, err := unplaceInTx(ctx, units, cells, records, l.ids, unitID, operatorID, now)
		unit = u
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("unit_id", unitID).
		Str("operator_id", operatorID).
		Msg("unidad retirada de su celda")
	return unit, nil
}

// unplaceInTx transición placed -> unplaced con los repositorios de una transacción abierta.
// La unidad es la fuente de verdad: si la celda no apuntaba a ella se libera igual el lado de la unidad
// y la divergencia queda para Reconstruct.
func unplaceInTx(
	ctx context.Context,
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
	ids RecordIDGenerator,
	unitID, operatorID string,
	now time.Time,
) (*entity.IndividualUnit, error) {
	u, err := units.GetByHumanID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundf(domain.SegmentUnit, "unidad %s no encontrada", unitID)
	}
	if !u.IsPlaced || u.Cell == nil {
		return nil, domain.Errorf(domain.KindNotPlaced, "la unidad %s no está ubicada", unitID)
	}
	addr := *u.Cell

	ok, err := units.MarkUnplaced(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Errorf(domain.KindNotPlaced, "la unidad %s no está ubicada", unitID)
	}
	if _, err := cells.Release(ctx, addr, unitID); err != nil {
		return nil, err
	}
	if err := records.Append(ctx, &entity.PlacementRecord{
		ID:         ids.NextID(),
		Action:     entity.PlacementActionUnplace,
		UnitID:     unitID,
		Address:    addr,
		OperatorID: operatorID,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	u.MarkUnplaced()
	return u, nil
}

// ReconcileReport resultado de comparar las tablas de unidades/celdas con el log.
type ReconcileReport struct {
	DryRun          bool
	RecordsReplayed int
	SkippedRecords  int
	// OrphanRecords unidades ubicadas según el log que ya no existen en la tabla de unidades.
	OrphanRecords []string
	UnitsCleared  []string
	UnitsRestored []string
	CellsCleared  []entity.CellAddress
	CellsRestored []entity.CellAddress
}

// Consistent true si no hubo nada que corregir.
func (r *ReconcileReport) Consistent() bool {
	return len(r.UnitsCleared) == 0 && len(r.UnitsRestored) == 0 &&
		len(r.CellsCleared) == 0 && len(r.CellsRestored) == 0
}

// Reconstruct reconstruye los flags de unidades y la ocupación de celdas a partir del log append-only.
// Es idempotente: una segunda ejecución sobre un estado consistente no cambia nada.
func (l *PlacementLedger) Reconstruct(ctx context.Context) (*ReconcileReport, error) {
	return l.reconcile(ctx, false)
}

// Audit hace la misma comparación que Reconstruct sin escribir (dry run).
func (l *PlacementLedger) Audit(ctx context.Context) (*ReconcileReport, error) {
	return l.reconcile(ctx, true)
}

func (l *PlacementLedger) reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	report := &ReconcileReport{DryRun: dryRun}

	err := l.txRunner.Run(ctx, func(
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error {
		entries, err := records.ListAll(ctx)
		if err != nil {
			return err
		}
		// Los registros de unidades borradas no participan del replay: un PLACE huérfano
		// no debe ocultar una ubicación posterior válida en la misma celda.
		entries, orphans, err := dropOrphanRecords(ctx, units, entries)
		if err != nil {
			return err
		}
		report.OrphanRecords = orphans
		state := placement.Replay(entries)
		report.RecordsReplayed = len(entries)
		report.SkippedRecords = len(state.Skipped)
		desiredUnits := state.Units
		desiredCells := make(map[entity.CellAddress]string, len(desiredUnits))
		for hid, p := range desiredUnits {
			desiredCells[p.Address] = hid
		}

		placed, err := units.ListPlaced(ctx)
		if err != nil {
			return err
		}
		occupied, err := cells.ListAllOccupied(ctx)
		if err != nil {
			return err
		}
		currentUnits := lo.SliceToMap(placed, func(u *entity.IndividualUnit) (string, entity.CellAddress) {
			if u.Cell == nil {
				return u.HumanID, entity.CellAddress{}
			}
			return u.HumanID, *u.Cell
		})
		currentCells := lo.SliceToMap(occupied, func(c *entity.Cell) (entity.CellAddress, string) {
			return c.Address, c.OccupiedBy
		})

		// 1. Unidades marcadas como ubicadas que el log no respalda (o en otra celda).
		for _, hid := range sortedKeys(currentUnits) {
			want, ok := desiredUnits[hid]
			if ok && want.Address == currentUnits[hid] {
				continue
			}
			report.UnitsCleared = append(report.UnitsCleared, hid)
			if !dryRun {
				if _, err := units.MarkUnplaced(ctx, hid); err != nil {
					return err
				}
			}
		}
		// 2. Celdas ocupadas por una unidad distinta a la del log.
		for _, addr := range sortedAddresses(lo.Keys(currentCells)) {
			if desiredCells[addr] == currentCells[addr] {
				continue
			}
			report.CellsCleared = append(report.CellsCleared, addr)
			if !dryRun {
				if _, err := cells.Release(ctx, addr, currentCells[addr]); err != nil {
					return err
				}
			}
		}
		// 3. Unidades que el log ubica y la tabla no.
		for _, hid := range sortedKeys(desiredUnits) {
			want := desiredUnits[hid]
			if cur, ok := currentUnits[hid]; ok && cur == want.Address {
				continue
			}
			report.UnitsRestored = append(report.UnitsRestored, hid)
			if !dryRun {
				if _, err := units.MarkPlaced(ctx, hid, want.Address, want.OperatorID, want.Record.CreatedAt); err != nil {
					return err
				}
			}
		}
		// 4. Celdas que el log ocupa y el índice no.
		for _, addr := range sortedAddresses(lo.Keys(desiredCells)) {
			if currentCells[addr] == desiredCells[addr] {
				continue
			}
			report.CellsRestored = append(report.CellsRestored, addr)
			if !dryRun {
				if _, err := cells.Occupy(ctx, addr, desiredCells[addr]); err != nil {
					return err
				}
			}
		}

		if dryRun {
			// Rollback explícito: Audit nunca escribe.
			return errDryRun
		}
		return nil
	}, Exclusive())
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}

	ev := l.log.Info()
	if !report.Consistent() {
		ev = l.log.Warn()
	}
	ev.Bool("dry_run", dryRun).
		Int("records", report.RecordsReplayed).
		Int("skipped", report.SkippedRecords).
		Int("orphans", len(report.OrphanRecords)).
		Int("units_cleared", len(report.UnitsCleared)).
		Int("units_restored", len(report.UnitsRestored)).
		Int("cells_cleared", len(report.CellsCleared)).
		Int("cells_restored", len(report.CellsRestored)).
		Msg("reconciliación del log de ubicaciones")
	return report, nil
}

// dropOrphanRecords descarta los registros cuya unidad ya no existe. Reporta como huérfanas las
// unidades borradas cuyo último registro es un PLACE (quedaron ubicadas según el log).
func dropOrphanRecords(ctx context.Context, units repository.UnitRepository, entries []entity.PlacementRecord) ([]entity.PlacementRecord, []string, error) {
	exists := make(map[string]bool)
	for _, hid := range lo.Uniq(lo.Map(entries, func(e entity.PlacementRecord, _ int) string { return e.UnitID })) {
		u, err := units.GetByHumanID(ctx, hid)
		if err != nil {
			return nil, nil, err
		}
		exists[hid] = u != nil
	}
	last := make(map[string]string)
	kept := make([]entity.PlacementRecord, 0, len(entries))
	for _, e := range entries {
		if exists[e.UnitID] {
			kept = append(kept, e)
			continue
		}
		last[e.UnitID] = e.Action
	}
	var orphans []string
	for hid, action := range last {
		if action == entity.PlacementActionPlace {
			orphans = append(orphans, hid)
		}
	}
	sort.Strings(orphans)
	return kept, orphans, nil
}

// History consulta el log de ubicaciones (auditoría), más reciente primero.
func (l *PlacementLedger) History(ctx context.Context, f repository.PlacementRecordFilter) ([]entity.PlacementRecord, error) {
	return l.records.List(ctx, f)
}

// Describe código canónico de la celda para mostrar; nunca falla.
func (l *PlacementLedger) Describe(ctx context.Context, addr entity.CellAddress) string {
	return l.describe(ctx, addr)
}

// describe código canónico de la celda; si la bodega ya no existe cae a la representación interna.
func (l *PlacementLedger) describe(ctx context.Context, addr entity.CellAddress) string {
	w, err := l.layout.Warehouse(ctx, addr.WarehouseID)
	if err != nil {
		return addr.String()
	}
	return cellcode.Encode(w.DisplayID, addr.Block, addr.Shelf, addr.Cell)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func sortedAddresses(addrs []entity.CellAddress) []entity.CellAddress {
	sort.Slice(addrs, func(i, j int) bool {
		a, b := addrs[i], addrs[j]
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Shelf != b.Shelf {
			return a.Shelf < b.Shelf
		}
		return a.Cell < b.Cell
	})
	return addrs
}
