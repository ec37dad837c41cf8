package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
)

var _ repository.CargoRequestRepository = (*CargoRequestRepo)(nil)

// CargoRequestRepo solicitudes de carga y sus tipos de ítem.
type CargoRequestRepo struct {
	db Querier
}

// NewCargoRequestRepository construye el adaptador.
func NewCargoRequestRepository(db Querier) *CargoRequestRepo {
	return &CargoRequestRepo{db: db}
}

// Create inserta la cabecera y los tipos de ítem. Llamar dentro de una transacción.
func (r *CargoRequestRepo) Create(ctx context.Context, req *entity.CargoRequest) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cargo_requests (id, request_number, created_at) VALUES ($1, $2, $3)`,
		req.ID, req.RequestNumber, req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.KindDuplicateRequest, "la solicitud %s ya está registrada", req.RequestNumber)
		}
		return fmt.Errorf("insert cargo request: %w", err)
	}
	for _, it := range req.ItemTypes {
		_, err := r.db.Exec(ctx, `
			INSERT INTO cargo_item_types (id, request_id, type_index, name, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, req.ID, it.Index, it.Name, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert cargo item type %s: %w", it.Index, err)
		}
	}
	return nil
}

// GetByNumber devuelve la solicitud con sus tipos de ítem ordenados por índice.
func (r *CargoRequestRepo) GetByNumber(ctx context.Context, requestNumber string) (*entity.CargoRequest, error) {
	var req entity.CargoRequest
	err := r.db.QueryRow(ctx,
		`SELECT id, request_number, created_at FROM cargo_requests WHERE request_number = $1`,
		requestNumber,
	).Scan(&req.ID, &req.RequestNumber, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cargo request: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, type_index, name, quantity
		FROM cargo_item_types WHERE request_id = $1
		ORDER BY length(type_index), type_index`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list cargo item types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.CargoItemType
		if err := rows.Scan(&it.ID, &it.RequestID, &it.Index, &it.Name, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cargo item type: %w", err)
		}
		req.ItemTypes = append(req.ItemTypes, it)
	}
	return &req, rows.Err()
}

// ExistsNumber indica si el número de solicitud ya está registrado.
func (r *CargoRequestRepo) ExistsNumber(ctx context.Context, requestNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cargo_requests WHERE request_number = $1)`, requestNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists cargo request: %w", err)
	}
	return exists, nil
}

// MaxNumberWithPrefix mayor número generado con el prefijo; compara por longitud y luego lexicográficamente
// para que "2501100" quede por encima de "250199".
func (r *CargoRequestRepo) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	pattern := "^" + regexp.QuoteMeta(prefix) + placement.GeneratedSeqPattern + "$"
	var number string
	err := r.db.QueryRow(ctx, `
		SELECT request_number FROM cargo_requests
		WHERE request_number ~ $1
		ORDER BY length(request_number) DESC, request_number DESC
		LIMIT 1`, pattern,
	).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("max cargo request number: %w", err)
	}
	return number, nil
}

// Delete borra la solicitud; tipos de ítem y unidades caen por ON DELETE CASCADE.
func (r *CargoRequestRepo) Delete(ctx context.Context, requestID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cargo_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("delete cargo request: %w", err)
	}
	return nil
}
