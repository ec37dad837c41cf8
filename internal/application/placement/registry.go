package placement

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// MaxItemQuantity tope de unidades por tipo de ítem en una solicitud.
const MaxItemQuantity = 999

// generateAttempts reintentos cuando dos altas concurrentes generan el mismo número.
const generateAttempts = 5

// ItemTypeInput tipo de ítem recibido del alta de carga.
type ItemTypeInput struct {
	Index    string
	Name     string
	Quantity int
}

// CargoUnitRegistry expande solicitudes en unidades individuales y las localiza por ID humano.
type CargoUnitRegistry struct {
	txRunner TxRunner
	requests repository.CargoRequestRepository
	units    repository.UnitRepository
	ids      RecordIDGenerator
	now      Clock
	log      *logger.Logger
}

// NewCargoUnitRegistry construye el registro.
func NewCargoUnitRegistry(
	txRunner TxRunner,
	requests repository.CargoRequestRepository,
	units repository.UnitRepository,
	ids RecordIDGenerator,
	log *logger.Logger,
) *CargoUnitRegistry {
	return &CargoUnitRegistry{
		txRunner: txRunner,
		requests: requests,
		units:    units,
		ids:      ids,
		now:      time.Now,
		log:      log,
	}
}

// Register crea Quantity unidades por tipo de ítem con IDs {solicitud}/{tipo}/{01..N}.
// DUPLICATE_REQUEST si el número ya está registrado.
func (r *CargoUnitRegistry) Register(ctx context.Context, requestNumber string, itemTypes []ItemTypeInput) ([]*entity.IndividualUnit, error) {
	requestNumber = strings.TrimSpace(requestNumber)
	if err := validateRegistration(requestNumber, itemTypes); err != nil {
		return nil, err
	}

	now := r.now()
	req := &entity.CargoRequest{
		ID:            uuid.New().String(),
		RequestNumber: requestNumber,
		CreatedAt:     now,
	}
	var units []*entity.IndividualUnit
	for _, in := range itemTypes {
		index := normalizeTypeIndex(in.Index)
		it := entity.CargoItemType{
			ID:        uuid.New().String(),
			RequestID: req.ID,
			Index:     index,
			Name:      strings.TrimSpace(in.Name),
			Quantity:  in.Quantity,
		}
		req.ItemTypes = append(req.ItemTypes, it)
		for _, unitIndex := range placement.UnitIndexes(in.Quantity) {
			hid := placement.UnitID{RequestNumber: requestNumber, ItemTypeIndex: index, UnitIndex: unitIndex}
			units = append(units, &entity.IndividualUnit{
				ID:            uuid.New().String(),
				HumanID:       hid.String(),
				RequestID:     req.ID,
				RequestNumber: requestNumber,
				ItemTypeIndex: index,
				UnitIndex:     unitIndex,
			})
		}
	}

	err := r.txRunner.RunCargo(ctx, func(
		requests repository.CargoRequestRepository,
		unitRepo repository.UnitRepository,
		_ repository.CellRepository,
		_ repository.PlacementRecordRepository,
	) error {
		exists, err := requests.ExistsNumber(ctx, requestNumber)
		if err != nil {
			return err
		}
		if exists {
			return domain.Errorf(domain.KindDuplicateRequest, "la solicitud %s ya está registrada", requestNumber)
		}
		if err := requests.Create(ctx, req); err != nil {
			return err
		}
		return unitRepo.CreateBatch(ctx, units)
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("request_number", requestNumber).
		Int("item_types", len(req.ItemTypes)).
		Int("units", len(units)).
		Msg("solicitud registrada")
	return units, nil
}

// FindUnit localiza una unidad por su ID humano. El NOT_FOUND indica qué segmento falló
// (solicitud, tipo de ítem o unidad) para distinguir índices mal contados.
func (r *CargoUnitRegistry) FindUnit(ctx context.Context, individualID string) (*entity.IndividualUnit, error) {
	id, err := placement.ParseUnitID(individualID)
	if err != nil {
		return nil, err
	}
	req, err := r.requests.GetByNumber(ctx, id.RequestNumber)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.NotFoundf(domain.SegmentRequest, "solicitud %s no encontrada", id.RequestNumber)
	}

	var it *entity.CargoItemType
	for i := range req.ItemTypes {
		if placement.SameIndex(req.ItemTypes[i].Index, id.ItemTypeIndex) {
			it = &req.ItemTypes[i]
			break
		}
	}
	if it == nil {
		return nil, domain.NotFoundf(domain.SegmentItemType,
			"la solicitud %s no tiene el tipo de ítem %s (tiene %d tipos)", req.RequestNumber, id.ItemTypeIndex, len(req.ItemTypes))
	}

	n, convErr := strconv.Atoi(id.UnitIndex)
	if convErr != nil || n < 1 || n > it.Quantity {
		return nil, domain.NotFoundf(domain.SegmentUnit,
			"el tipo %s de la solicitud %s tiene %d unidades; no existe la unidad %s",
			it.Index, req.RequestNumber, it.Quantity, id.UnitIndex)
	}
	canonical := placement.UnitID{
		RequestNumber: req.RequestNumber,
		ItemTypeIndex: it.Index,
		UnitIndex:     placement.FormatIndex(n, placement.IndexWidth(it.Quantity)),
	}
	unit, err := r.units.GetByHumanID(ctx, canonical.String())
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.NotFoundf(domain.SegmentUnit, "unidad %s no encontrada", canonical.String())
	}
	return unit, nil
}

// FindPreferredOrGenerate devuelve el número preferido si es único; si ya existe falla con
// ALREADY_EXISTS en lugar de renumerar, para que los reintentos del cliente sean predecibles.
// Sin número preferido genera uno nuevo con formato AAMM + secuencia (ej. 250101).
func (r *CargoUnitRegistry) FindPreferredOrGenerate(ctx context.Context, preferred string) (string, error) {
	preferred = strings.TrimSpace(preferred)
	if preferred != "" {
		if strings.Contains(preferred, "/") {
			return "", domain.Errorf(domain.KindValidation, "el número de solicitud %q no puede contener '/'", preferred)
		}
		exists, err := r.requests.ExistsNumber(ctx, preferred)
		if err != nil {
			return "", err
		}
		if exists {
			return "", domain.Errorf(domain.KindAlreadyExists, "el número de solicitud %s ya existe", preferred)
		}
		return preferred, nil
	}

	prefix := r.now().Format("0601")
	last, err := r.requests.MaxNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return placement.NextRequestNumber(prefix, last)
}

// RegisterWithNumber combina FindPreferredOrGenerate y Register. Si el número fue generado y otra
// alta concurrente lo tomó primero, genera otro; un número preferido nunca se cambia.
func (r *CargoUnitRegistry) RegisterWithNumber(ctx context.Context, preferred string, itemTypes []ItemTypeInput) (string, []*entity.IndividualUnit, error) {
	attempts := 1
	if strings.TrimSpace(preferred) == "" {
		attempts = generateAttempts
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		number, err := r.FindPreferredOrGenerate(ctx, preferred)
		if err != nil {
			return "", nil, err
		}
		units, err := r.Register(ctx, number, itemTypes)
		if err == nil {
			return number, units, nil
		}
		lastErr = err
		if !isDuplicate(err) {
			return "", nil, err
		}
		if strings.TrimSpace(preferred) != "" {
			return "", nil, domain.Errorf(domain.KindAlreadyExists, "el número de solicitud %s ya existe", number)
		}
	}
	return "", nil, lastErr
}

// Request devuelve la solicitud por número; NOT_FOUND (segmento request) si no existe.
func (r *CargoUnitRegistry) Request(ctx context.Context, requestNumber string) (*entity.CargoRequest, error) {
	req, err := r.requests.GetByNumber(ctx, strings.TrimSpace(requestNumber))
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.NotFoundf(domain.SegmentRequest, "solicitud %s no encontrada", requestNumber)
	}
	return req, nil
}

// DeleteRequest baja de carga: libera todas las celdas ocupadas por sus unidades (registrando UNPLACE)
// y borra la solicitud en la misma transacción. Devuelve cuántas unidades se liberaron.
func (r *CargoUnitRegistry) DeleteRequest(ctx context.Context, requestNumber, operatorID string) (int, error) {
	req, err := r.Request(ctx, requestNumber)
	if err != nil {
		return 0, err
	}
	freed := 0
	now := r.now()
	err = r.txRunner.RunCargo(ctx, func(
		requests repository.CargoRequestRepository,
		units repository.UnitRepository,
		cells repository.CellRepository,
		records repository.PlacementRecordRepository,
	) error {
		list, err := units.ListByRequestForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		for _, u := range list {
			if !u.IsPlaced {
				continue
			}
			if _, err := unplaceInTx(ctx, units, cells, records, r.ids, u.HumanID, operatorID, now); err != nil {
				return err
			}
			freed++
		}
		return requests.Delete(ctx, req.ID)
	})
	if err != nil {
		return 0, err
	}
	r.log.Info().
		Str("request_number", req.RequestNumber).
		Str("operator_id", operatorID).
		Int("freed_cells", freed).
		Msg("solicitud eliminada")
	return freed, nil
}

func validateRegistration(requestNumber string, itemTypes []ItemTypeInput) error {
	if requestNumber == "" {
		return domain.Errorf(domain.KindValidation, "request_number es requerido")
	}
	if strings.Contains(requestNumber, "/") {
		return domain.Errorf(domain.KindValidation, "el número de solicitud %q no puede contener '/'", requestNumber)
	}
	if len(itemTypes) == 0 {
		return domain.Errorf(domain.KindValidation, "la solicitud %s no tiene tipos de ítem", requestNumber)
	}
	seen := make(map[string]bool, len(itemTypes))
	for _, it := range itemTypes {
		idx := normalizeTypeIndex(it.Index)
		n, err := strconv.Atoi(idx)
		if err != nil || n < 1 {
			return domain.Errorf(domain.KindValidation, "índice de tipo de ítem %q inválido", it.Index)
		}
		if seen[idx] {
			return domain.Errorf(domain.KindValidation, "índice de tipo de ítem %s repetido", idx)
		}
		seen[idx] = true
		if it.Quantity < 1 || it.Quantity > MaxItemQuantity {
			return domain.Errorf(domain.KindValidation,
				"cantidad %d inválida para el tipo %s (1-%d)", it.Quantity, idx, MaxItemQuantity)
		}
	}
	return nil
}

// normalizeTypeIndex "1" -> "01"; índices no numéricos se dejan tal cual (y luego fallan validación).
func normalizeTypeIndex(index string) string {
	index = strings.TrimSpace(index)
	n, err := strconv.Atoi(index)
	if err != nil || n < 0 {
		return index
	}
	return placement.FormatIndex(n, 2)
}

func isDuplicate(err error) bool {
	k := domain.KindOf(err)
	return k == domain.KindDuplicateRequest || k == domain.KindAlreadyExists
}
