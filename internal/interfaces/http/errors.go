package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// statusByKind código HTTP de cada variante de error de dominio.
var statusByKind = map[domain.Kind]int{
	domain.KindUnknownWarehouse:   fiber.StatusNotFound,
	domain.KindOutOfRange:         fiber.StatusUnprocessableEntity,
	domain.KindUnknownFormat:      fiber.StatusBadRequest,
	domain.KindNoDefaultWarehouse: fiber.StatusBadRequest,
	domain.KindNotFound:           fiber.StatusNotFound,
	domain.KindDuplicateRequest:   fiber.StatusConflict,
	domain.KindAlreadyExists:      fiber.StatusConflict,
	domain.KindUnitAlreadyPlaced:  fiber.StatusConflict,
	domain.KindCellOccupied:       fiber.StatusConflict,
	domain.KindNotPlaced:          fiber.StatusConflict,
	domain.KindValidation:         fiber.StatusBadRequest,
}

// StatusFor código HTTP del error (500 si no es de dominio).
func StatusFor(err error) int {
	if st, ok := statusByKind[domain.KindOf(err)]; ok {
		return st
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse. Los errores internos se registran y no exponen detalles.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	de := domain.AsError(err)
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
		return c.Status(status).JSON(dto.ErrorResponse{Code: string(domain.KindInternal), Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(de.Kind), Message: de.Error(), Segment: de.Segment})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
