package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// CargoHandler alta, consulta y baja de solicitudes de carga.
type CargoHandler struct {
	registry *placement.CargoUnitRegistry
	svc      *placement.PlacementService
	log      *logger.Logger
}

// NewCargoHandler construye el handler.
func NewCargoHandler(registry *placement.CargoUnitRegistry, svc *placement.PlacementService, log *logger.Logger) *CargoHandler {
	return &CargoHandler{registry: registry, svc: svc, log: log}
}

// Register godoc
// @Summary      Registrar solicitud de carga
// @Description  Expande cada tipo de ítem en unidades individuales {solicitud}/{tipo}/{01..N}.
// @Description  Sin request_number se genera uno (AAMM + secuencia); uno preferido nunca se renumera.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Tipos de ítem y cantidades"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *CargoHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if verr := validationError(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	itemTypes := make([]placement.ItemTypeInput, 0, len(in.ItemTypes))
	for _, it := range in.ItemTypes {
		itemTypes = append(itemTypes, placement.ItemTypeInput{Index: it.Index, Name: it.Name, Quantity: it.Quantity})
	}
	number, units, err := h.registry.RegisterWithNumber(c.UserContext(), in.RequestNumber, itemTypes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.HumanID)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		RequestNumber: number,
		TotalUnits:    len(units),
		UnitIDs:       ids,
	})
}

// FindUnit godoc
// @Summary      Buscar unidad por ID
// @Description  El ID va sin escapar en la ruta: /api/units/250101/01/03. En NOT_FOUND, segment indica qué parte falló.
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id} [get]
func (h *CargoHandler) FindUnit(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("*"))
	if err != nil || raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	ctx := c.UserContext()
	u, err := h.svc.FindUnit(ctx, raw)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.UnitResponse{
		UnitID:        u.HumanID,
		RequestNumber: u.RequestNumber,
		ItemTypeIndex: u.ItemTypeIndex,
		UnitIndex:     u.UnitIndex,
		IsPlaced:      u.IsPlaced,
		PlacedBy:      u.PlacedBy,
		PlacedAt:      u.PlacedAt,
	}
	if u.Cell != nil {
		out.CellCode = h.svc.DescribeCell(ctx, *u.Cell)
	}
	return c.JSON(out)
}

// DeleteRequest godoc
// @Summary      Baja de solicitud de carga
// @Description  Libera las celdas de sus unidades (registrando UNPLACE) y borra la solicitud.
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de solicitud"
// @Success      200  {object}  dto.DeleteRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{number} [delete]
func (h *CargoHandler) DeleteRequest(c *fiber.Ctx) error {
	number := c.Params("number")
	freed, err := h.registry.DeleteRequest(c.UserContext(), number, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DeleteRequestResponse{RequestNumber: number, FreedCells: freed})
}
