package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/domain"
	domplacement "github.com/jhoicas/cargo-placement/internal/domain/placement"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// PlacementHandler ubicación de unidades por escaneo (operadores y couriers).
type PlacementHandler struct {
	svc *placement.PlacementService
	log *logger.Logger
}

// NewPlacementHandler construye el handler.
func NewPlacementHandler(svc *placement.PlacementService, log *logger.Logger) *PlacementHandler {
	return &PlacementHandler{svc: svc, log: log}
}

// Place godoc
// @Summary      Ubicar unidad en celda
// @Description  Escaneo de unidad + celda (forma compacta 001-01-01-001 o legada Б1-П1-Я1).
// @Description  Si la unidad ya está en esa misma celda responde 200 con already_placed=true.
// @Tags         placements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlaceRequest  true  "unit_id, cell_code, warehouse_id opcional"
// @Success      201   {object}  dto.PlaceResponse
// @Success      200   {object}  dto.PlaceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/placements [post]
func (h *PlacementHandler) Place(c *fiber.Ctx) error {
	var in dto.PlaceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if verr := validationError(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	defaultWarehouse := sessionWarehouse(c, in.WarehouseID)
	ctx := c.UserContext()

	progress, err := h.svc.PlaceByCode(ctx, in.UnitID, in.CellCode, GetUserID(c), defaultWarehouse)
	status := fiber.StatusCreated
	alreadyPlaced := false
	if err != nil {
		if domain.KindOf(err) != domain.KindUnitAlreadyPlaced {
			return writeError(c, h.log, err)
		}
		// Reintento del cliente: misma celda equivale a éxito.
		retried, sameCell, rerr := h.svc.RetryOutcome(ctx, in.UnitID, in.CellCode, defaultWarehouse)
		if rerr != nil || !sameCell {
			return writeError(c, h.log, err)
		}
		progress, status, alreadyPlaced = retried, fiber.StatusOK, true
	}

	code, err := h.svc.CanonicalCode(ctx, in.CellCode, defaultWarehouse)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(status).JSON(dto.PlaceResponse{
		UnitID:        strings.TrimSpace(in.UnitID),
		CellCode:      code,
		AlreadyPlaced: alreadyPlaced,
		Progress:      toProgressResponse(progress),
	})
}

// Unplace godoc
// @Summary      Retirar unidad de su celda
// @Tags         placements
// @Security     Bearer
// @Produce      json
// @Param        unit_id  path  string  true  "ID de la unidad (URL-escaped, ej. 250101%2F01%2F01)"
// @Success      200  {object}  dto.ProgressResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/placements/{unit_id} [delete]
func (h *PlacementHandler) Unplace(c *fiber.Ctx) error {
	unitID, err := url.PathUnescape(c.Params("unit_id"))
	if err != nil || unitID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "unit_id es requerido"})
	}
	progress, err := h.svc.Unplace(c.UserContext(), unitID, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toProgressResponse(progress))
}

// VerifyCell godoc
// @Summary      Verificar celda
// @Description  Chequeo de solo lectura: celda libre u ocupada por qué unidad.
// @Tags         placements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyCellRequest  true  "cell_code"
// @Success      200   {object}  dto.CellInfoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cells/verify [post]
func (h *PlacementHandler) VerifyCell(c *fiber.Ctx) error {
	var in dto.VerifyCellRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if verr := validationError(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	info, err := h.svc.VerifyCell(c.UserContext(), in.CellCode, sessionWarehouse(c, in.WarehouseID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CellInfoResponse{
		WarehouseID:        info.WarehouseID,
		WarehouseDisplayID: info.WarehouseDisplayID,
		WarehouseName:      info.WarehouseName,
		Code:               info.Code,
		Block:              info.Block,
		Shelf:              info.Shelf,
		Cell:               info.Cell,
		IsOccupied:         info.IsOccupied,
		OccupantUnitID:     info.OccupantUnitID,
	})
}

// Progress godoc
// @Summary      Avance de ubicación de una solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de solicitud"
// @Success      200  {object}  dto.ProgressResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{number}/progress [get]
func (h *PlacementHandler) Progress(c *fiber.Ctx) error {
	progress, err := h.svc.Progress(c.UserContext(), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toProgressResponse(progress))
}

// sessionWarehouse bodega por defecto para códigos legados: la del body o la de la sesión.
func sessionWarehouse(c *fiber.Ctx, explicit string) string {
	if w := strings.TrimSpace(explicit); w != "" {
		return w
	}
	return GetWarehouseID(c)
}

func toProgressResponse(p *domplacement.Progress) dto.ProgressResponse {
	if p == nil {
		return dto.ProgressResponse{}
	}
	out := dto.ProgressResponse{
		RequestNumber: p.RequestNumber,
		TotalUnits:    p.TotalUnits,
		PlacedUnits:   p.PlacedUnits,
		Percent:       p.Percent,
		OverallStatus: string(p.OverallStatus),
		PerItemType:   make([]dto.ItemTypeProgressResponse, 0, len(p.PerItemType)),
	}
	for _, it := range p.PerItemType {
		out.PerItemType = append(out.PerItemType, dto.ItemTypeProgressResponse{
			Index:   it.Index,
			Name:    it.Name,
			Placed:  it.Placed,
			Total:   it.Total,
			Percent: it.Percent,
		})
	}
	return out
}
