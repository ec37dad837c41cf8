package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
	"github.com/jhoicas/cargo-placement/internal/application/placement"
	"github.com/jhoicas/cargo-placement/internal/application/usecase"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PlacementSvc *placement.PlacementService
	Registry     *placement.CargoUnitRegistry
	Ledger       *placement.PlacementLedger
	WarehouseUC  *usecase.WarehouseUseCase
	JWTSecret    string
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Health (público)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Especificación OpenAPI registrada por el paquete docs
	api.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "especificación no registrada"})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(entity.RoleAdmin, entity.RoleOperator, entity.RoleCourier)
	staff := RequireRole(entity.RoleAdmin, entity.RoleOperator)
	adminOnly := RequireRole(entity.RoleAdmin)

	placementHandler := NewPlacementHandler(deps.PlacementSvc, log)
	cargoHandler := NewCargoHandler(deps.Registry, deps.PlacementSvc, log)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	adminHandler := NewAdminHandler(deps.Ledger, log)

	// Ubicaciones
	placements := protected.Group("/placements")
	placements.Get("/log", adminOnly, adminHandler.PlacementLog)
	placements.Post("/", anyRole, placementHandler.Place)
	placements.Delete("/:unit_id", staff, placementHandler.Unplace)

	protected.Post("/cells/verify", anyRole, placementHandler.VerifyCell)

	// Solicitudes de carga
	requests := protected.Group("/requests")
	requests.Post("/", staff, cargoHandler.Register)
	requests.Get("/:number/progress", anyRole, placementHandler.Progress)
	requests.Delete("/:number", adminOnly, cargoHandler.DeleteRequest)

	// Unidades: el ID lleva "/" y se captura con comodín.
	protected.Get("/units/*", anyRole, cargoHandler.FindUnit)

	// Bodegas
	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id/occupancy.xlsx", staff, warehouseHandler.Occupancy)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)

	// Administración
	protected.Post("/admin/reconcile", adminOnly, adminHandler.Reconcile)
}
