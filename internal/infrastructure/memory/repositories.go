package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	domplacement "github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository       = (*WarehouseRepo)(nil)
	_ repository.CargoRequestRepository    = (*CargoRequestRepo)(nil)
	_ repository.UnitRepository            = (*UnitRepo)(nil)
	_ repository.CellRepository            = (*CellRepo)(nil)
	_ repository.PlacementRecordRepository = (*PlacementRecordRepo)(nil)
)

// ─── Bodegas ──────────────────────────────────────────────────────────────────

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ acc accessor }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.Errorf(domain.KindAlreadyExists, "bodega %s ya existe", w.ID)
		}
		for _, other := range st.warehouses {
			if other.DisplayID == w.DisplayID {
				return domain.Errorf(domain.KindAlreadyExists, "ya existe una bodega con número %s", w.DisplayID)
			}
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.acc(false, func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) GetByDisplayID(_ context.Context, displayID string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.acc(false, func(st *state) error {
		for _, w := range st.warehouses {
			if w.DisplayID == displayID {
				found := w
				out = &found
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.acc(true, func(st *state) error {
		cur, ok := st.warehouses[w.ID]
		if !ok {
			return domain.Errorf(domain.KindUnknownWarehouse, "bodega %s no encontrada", w.ID)
		}
		cur.Name = w.Name
		cur.BlocksCount = w.BlocksCount
		cur.ShelvesPerBlock = w.ShelvesPerBlock
		cur.CellsPerShelf = w.CellsPerShelf
		cur.UpdatedAt = w.UpdatedAt
		st.warehouses[w.ID] = cur
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.acc(false, func(st *state) error {
		all := lo.Values(st.warehouses)
		sort.Slice(all, func(i, j int) bool { return all[i].DisplayID < all[j].DisplayID })
		out = lo.Map(page(all, limit, offset), func(w entity.Warehouse, _ int) *entity.Warehouse { return &w })
		return nil
	})
	return out, err
}

// ─── Solicitudes ──────────────────────────────────────────────────────────────

// CargoRequestRepo solicitudes en memoria.
type CargoRequestRepo struct{ acc accessor }

func (r *CargoRequestRepo) Create(_ context.Context, req *entity.CargoRequest) error {
	return r.acc(true, func(st *state) error {
		if findRequest(st, req.RequestNumber) != nil {
			return domain.Errorf(domain.KindDuplicateRequest, "la solicitud %s ya está registrada", req.RequestNumber)
		}
		st.requests[req.ID] = cloneRequest(*req)
		return nil
	})
}

func (r *CargoRequestRepo) GetByNumber(_ context.Context, requestNumber string) (*entity.CargoRequest, error) {
	var out *entity.CargoRequest
	err := r.acc(false, func(st *state) error {
		if req := findRequest(st, requestNumber); req != nil {
			c := cloneRequest(*req)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CargoRequestRepo) ExistsNumber(ctx context.Context, requestNumber string) (bool, error) {
	req, err := r.GetByNumber(ctx, requestNumber)
	return req != nil, err
}

func (r *CargoRequestRepo) MaxNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	best := ""
	err := r.acc(false, func(st *state) error {
		for _, req := range st.requests {
			n := req.RequestNumber
			if !domplacement.IsGeneratedNumber(n, prefix) {
				continue
			}
			if len(n) > len(best) || (len(n) == len(best) && n > best) {
				best = n
			}
		}
		return nil
	})
	return best, err
}

// Delete borra la solicitud y sus unidades (cascada).
func (r *CargoRequestRepo) Delete(_ context.Context, requestID string) error {
	return r.acc(true, func(st *state) error {
		delete(st.requests, requestID)
		for hid, u := range st.units {
			if u.RequestID == requestID {
				delete(st.units, hid)
			}
		}
		return nil
	})
}

func findRequest(st *state, requestNumber string) *entity.CargoRequest {
	for _, req := range st.requests {
		if req.RequestNumber == requestNumber {
			found := req
			return &found
		}
	}
	return nil
}

// ─── Unidades ─────────────────────────────────────────────────────────────────

// UnitRepo unidades individuales en memoria, indexadas por HumanID.
type UnitRepo struct{ acc accessor }

func (r *UnitRepo) CreateBatch(_ context.Context, units []*entity.IndividualUnit) error {
	return r.acc(true, func(st *state) error {
		for _, u := range units {
			if _, ok := st.units[u.HumanID]; ok {
				return domain.Errorf(domain.KindAlreadyExists, "la unidad %s ya existe", u.HumanID)
			}
		}
		for _, u := range units {
			st.units[u.HumanID] = cloneUnit(*u)
		}
		return nil
	})
}

func (r *UnitRepo) GetByHumanID(_ context.Context, humanID string) (*entity.IndividualUnit, error) {
	var out *entity.IndividualUnit
	err := r.acc(false, func(st *state) error {
		if u, ok := st.units[humanID]; ok {
			c := cloneUnit(u)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *UnitRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.IndividualUnit, error) {
	return r.list(func(u entity.IndividualUnit) bool { return u.RequestID == requestID })
}

// ListByRequestForUpdate las transacciones del store ya son exclusivas.
func (r *UnitRepo) ListByRequestForUpdate(ctx context.Context, requestID string) ([]*entity.IndividualUnit, error) {
	return r.ListByRequest(ctx, requestID)
}

func (r *UnitRepo) ListPlaced(_ context.Context) ([]*entity.IndividualUnit, error) {
	return r.list(func(u entity.IndividualUnit) bool { return u.IsPlaced })
}

func (r *UnitRepo) list(keep func(u entity.IndividualUnit) bool) ([]*entity.IndividualUnit, error) {
	var out []*entity.IndividualUnit
	err := r.acc(false, func(st *state) error {
		for _, u := range st.units {
			if keep(u) {
				c := cloneUnit(u)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].HumanID < out[j].HumanID })
	return out, err
}

func (r *UnitRepo) MarkPlaced(_ context.Context, humanID string, addr entity.CellAddress, operatorID string, at time.Time) (bool, error) {
	placed := false
	err := r.acc(true, func(st *state) error {
		u, ok := st.units[humanID]
		if !ok || u.IsPlaced {
			return nil
		}
		u.MarkPlaced(addr, operatorID, at)
		st.units[humanID] = u
		placed = true
		return nil
	})
	return placed, err
}

func (r *UnitRepo) MarkUnplaced(_ context.Context, humanID string) (bool, error) {
	done := false
	err := r.acc(true, func(st *state) error {
		u, ok := st.units[humanID]
		if !ok || !u.IsPlaced {
			return nil
		}
		u.MarkUnplaced()
		st.units[humanID] = u
		done = true
		return nil
	})
	return done, err
}

// ─── Celdas ───────────────────────────────────────────────────────────────────

// CellRepo índice de ocupación en memoria.
type CellRepo struct{ acc accessor }

func (r *CellRepo) Get(_ context.Context, addr entity.CellAddress) (*entity.Cell, error) {
	var out *entity.Cell
	err := r.acc(false, func(st *state) error {
		if c, ok := st.cells[addr]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CellRepo) Occupy(_ context.Context, addr entity.CellAddress, unitID string) (bool, error) {
	ok := false
	err := r.acc(true, func(st *state) error {
		if c, exists := st.cells[addr]; exists && c.OccupiedBy != "" {
			return nil
		}
		for a, c := range st.cells {
			if c.OccupiedBy == unitID && a != addr {
				return domain.Errorf(domain.KindUnitAlreadyPlaced, "la unidad %s ya ocupa otra celda", unitID)
			}
		}
		st.cells[addr] = entity.Cell{Address: addr, OccupiedBy: unitID, UpdatedAt: time.Now()}
		ok = true
		return nil
	})
	return ok, err
}

func (r *CellRepo) Release(_ context.Context, addr entity.CellAddress, unitID string) (bool, error) {
	ok := false
	err := r.acc(true, func(st *state) error {
		c, exists := st.cells[addr]
		if !exists || c.OccupiedBy != unitID {
			return nil
		}
		c.OccupiedBy = ""
		c.UpdatedAt = time.Now()
		st.cells[addr] = c
		ok = true
		return nil
	})
	return ok, err
}

func (r *CellRepo) ListOccupied(_ context.Context, warehouseID string) ([]*entity.Cell, error) {
	return r.list(func(c entity.Cell) bool { return c.Address.WarehouseID == warehouseID })
}

func (r *CellRepo) ListAllOccupied(_ context.Context) ([]*entity.Cell, error) {
	return r.list(func(entity.Cell) bool { return true })
}

func (r *CellRepo) OccupancyPercent(ctx context.Context, warehouseID string, capacity int) (decimal.Decimal, error) {
	occupied, err := r.ListOccupied(ctx, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return domplacement.Percent(len(occupied), capacity), nil
}

func (r *CellRepo) list(keep func(c entity.Cell) bool) ([]*entity.Cell, error) {
	var out []*entity.Cell
	err := r.acc(false, func(st *state) error {
		for _, c := range st.cells {
			if c.OccupiedBy != "" && keep(c) {
				cell := c
				out = append(out, &cell)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return lessAddress(out[i].Address, out[j].Address) })
	return out, err
}

func lessAddress(a, b entity.CellAddress) bool {
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
}

// ─── Log de ubicaciones ───────────────────────────────────────────────────────

// PlacementRecordRepo log append-only en memoria.
type PlacementRecordRepo struct{ acc accessor }

func (r *PlacementRecordRepo) Append(_ context.Context, rec *entity.PlacementRecord) error {
	return r.acc(true, func(st *state) error {
		st.records = append(st.records, *rec)
		return nil
	})
}

func (r *PlacementRecordRepo) ListAll(_ context.Context) ([]entity.PlacementRecord, error) {
	var out []entity.PlacementRecord
	err := r.acc(false, func(st *state) error {
		out = append([]entity.PlacementRecord(nil), st.records...)
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *PlacementRecordRepo) List(ctx context.Context, f repository.PlacementRecordFilter) ([]entity.PlacementRecord, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := lo.Filter(all, func(rec entity.PlacementRecord, _ int) bool {
		switch {
		case f.UnitID != "" && rec.UnitID != f.UnitID:
			return false
		case f.WarehouseID != "" && rec.Address.WarehouseID != f.WarehouseID:
			return false
		case f.OperatorID != "" && rec.OperatorID != f.OperatorID:
			return false
		case f.From != nil && rec.CreatedAt.Before(*f.From):
			return false
		case f.To != nil && !rec.CreatedAt.Before(*f.To):
			return false
		}
		return true
	})
	slices.Reverse(matched)
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	return page(matched, limit, f.Offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
