// Package memory implementa los repositorios en memoria con transacciones copy-on-write.
// Se usa con STORAGE_DRIVER=memory y en los tests de aplicación y HTTP.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ placement.TxRunner = (*Store)(nil)

type state struct {
	warehouses map[string]entity.Warehouse
	requests   map[string]entity.CargoRequest // por ID
	units      map[string]entity.IndividualUnit
	cells      map[entity.CellAddress]entity.Cell
	records    []entity.PlacementRecord
}

func newState() state {
	return state{
		warehouses: map[string]entity.Warehouse{},
		requests:   map[string]entity.CargoRequest{},
		units:      map[string]entity.IndividualUnit{},
		cells:      map[entity.CellAddress]entity.Cell{},
	}
}

func (s state) clone() state {
	c := state{
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		requests:   make(map[string]entity.CargoRequest, len(s.requests)),
		units:      make(map[string]entity.IndividualUnit, len(s.units)),
		cells:      make(map[entity.CellAddress]entity.Cell, len(s.cells)),
		records:    make([]entity.PlacementRecord, len(s.records)),
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = cloneRequest(v)
	}
	for k, v := range s.units {
		c.units[k] = cloneUnit(v)
	}
	for k, v := range s.cells {
		c.cells[k] = v
	}
	copy(c.records, s.records)
	return c
}

func cloneRequest(r entity.CargoRequest) entity.CargoRequest {
	r.ItemTypes = append([]entity.CargoItemType(nil), r.ItemTypes...)
	return r
}

func cloneUnit(u entity.IndividualUnit) entity.IndividualUnit {
	if u.Cell != nil {
		addr := *u.Cell
		u.Cell = &addr
	}
	if u.PlacedAt != nil {
		at := *u.PlacedAt
		u.PlacedAt = &at
	}
	return u
}

// accessor da acceso al estado: con lock propio (fuera de tx) o al clon de la tx en curso.
type accessor func(write bool, fn func(st *state) error) error

// Store estado en memoria protegido por un RWMutex. Las transacciones trabajan sobre un clon
// y lo publican solo si fn termina sin error; un error descarta el clon (rollback).
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) access(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(&s.state)
}

// inTx serializa las transacciones: el lock de escritura se mantiene durante fn.
// fn no debe usar repositorios del Store fuera de la tx (bloquearía).
func (s *Store) inTx(ctx context.Context, fn func(acc accessor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	acc := func(_ bool, f func(st *state) error) error { return f(&work) }
	if err := fn(acc); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Run implementa placement.TxRunner. Las transacciones ya son exclusivas entre sí, así que las opciones no cambian nada.
func (s *Store) Run(ctx context.Context, fn func(
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
) error, _ ...placement.TxOption) error {
	return s.inTx(ctx, func(acc accessor) error {
		return fn(&UnitRepo{acc: acc}, &CellRepo{acc: acc}, &PlacementRecordRepo{acc: acc})
	})
}

// RunCargo implementa placement.TxRunner.
func (s *Store) RunCargo(ctx context.Context, fn func(
	requests repository.CargoRequestRepository,
	units repository.UnitRepository,
	cells repository.CellRepository,
	records repository.PlacementRecordRepository,
) error, _ ...placement.TxOption) error {
	return s.inTx(ctx, func(acc accessor) error {
		return fn(&CargoRequestRepo{acc: acc}, &UnitRepo{acc: acc}, &CellRepo{acc: acc}, &PlacementRecordRepo{acc: acc})
	})
}

// Warehouses repositorio de bodegas fuera de transacción.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{acc: s.access} }

// Requests repositorio de solicitudes fuera de transacción.
func (s *Store) Requests() *CargoRequestRepo { return &CargoRequestRepo{acc: s.access} }

// Units repositorio de unidades fuera de transacción.
func (s *Store) Units() *UnitRepo { return &UnitRepo{acc: s.access} }

// Cells repositorio de celdas fuera de transacción.
func (s *Store) Cells() *CellRepo { return &CellRepo{acc: s.access} }

// Records repositorio del log fuera de transacción.
func (s *Store) Records() *PlacementRecordRepo { return &PlacementRecordRepo{acc: s.access} }
