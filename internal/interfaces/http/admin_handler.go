package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/internal/domain/repository"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// AdminHandler auditoría del log de ubicaciones y reconciliación (solo admin).
type AdminHandler struct {
	ledger *placement.PlacementLedger
	log    *logger.Logger
}

// NewAdminHandler construye el handler.
func NewAdminHandler(ledger *placement.PlacementLedger, log *logger.Logger) *AdminHandler {
	return &AdminHandler{ledger: ledger, log: log}
}

// PlacementLog godoc
// @Summary      Log de ubicaciones
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        unit_id       query  string  false  "Filtrar por unidad"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        operator_id   query  string  false  "Filtrar por operador"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta, exclusivo (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PlacementLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/placements/log [get]
func (h *AdminHandler) PlacementLog(c *fiber.Ctx) error {
	var q dto.PlacementLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.DefaultPage()
	if q.Limit > 100 {
		q.Limit = 100
	}
	if verr := validationError(q); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	f := repository.PlacementRecordFilter{
		UnitID:      q.UnitID,
		WarehouseID: q.WarehouseID,
		OperatorID:  q.OperatorID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	var err error
	if f.From, err = parseTime(q.From); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if f.To, err = parseTime(q.To); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	ctx := c.UserContext()
	records, err := h.ledger.History(ctx, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.PlacementRecordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, dto.PlacementRecordResponse{
			ID:         rec.ID,
			Action:     rec.Action,
			UnitID:     rec.UnitID,
			CellCode:   h.ledger.Describe(ctx, rec.Address),
			OperatorID: rec.OperatorID,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return c.JSON(dto.PlacementLogResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	})
}

// Reconcile godoc
// @Summary      Reconstruir estado desde el log
// @Description  Recalcula flags de unidades y ocupación de celdas a partir del log append-only.
// @Description  Con dry_run=true solo informa las diferencias.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        dry_run  query  bool  false  "Solo auditar"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/admin/reconcile [post]
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		report *placement.ReconcileReport
		err    error
	)
	if c.QueryBool("dry_run", false) {
		report, err = h.ledger.Audit(ctx)
	} else {
		report, err = h.ledger.Reconstruct(ctx)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Str("user_id", GetUserID(c)).Bool("dry_run", report.DryRun).Msg("reconciliación solicitada")
	return c.JSON(toReconcileResponse(report))
}

func toReconcileResponse(r *placement.ReconcileReport) dto.ReconcileResponse {
	return dto.ReconcileResponse{
		DryRun:          r.DryRun,
		Consistent:      r.Consistent(),
		RecordsReplayed: r.RecordsReplayed,
		SkippedRecords:  r.SkippedRecords,
		OrphanRecords:   nonNil(r.OrphanRecords),
		UnitsCleared:    nonNil(r.UnitsCleared),
		UnitsRestored:   nonNil(r.UnitsRestored),
		CellsCleared:    addrStrings(r.CellsCleared),
		CellsRestored:   addrStrings(r.CellsRestored),
	}
}

func addrStrings(addrs []entity.CellAddress) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
