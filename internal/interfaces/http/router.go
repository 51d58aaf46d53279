package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *assignment.Engine
	StockUC   *stock.UseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas son protegidas: los
// tokens los emite el servicio de identidad del host, este API solo valida.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Transiciones de asignación (cualquier rol autenticado; la política de
	// niveles de stock y privilegios la aplica el motor por transición)
	assignments := api.Group("/assignments")
	assignmentHandler := NewAssignmentHandler(deps.Engine)
	assignments.Post("/", assignmentHandler.Assign)
	assignments.Post("/confirm-replace", assignmentHandler.ConfirmReplace)
	assignments.Post("/unassign", assignmentHandler.Unassign)
	assignments.Post("/queue-remove", assignmentHandler.RemoveFromQueue)
	assignments.Post("/reassign", assignmentHandler.Reassign)

	// Libro de stock
	items := api.Group("/items")
	stockHandler := NewStockHandler(deps.StockUC)
	items.Get("/:id", stockHandler.GetItem)
	items.Get("/:id/history", stockHandler.GetItemHistory)
	// El override manual de nivel lo restringimos a roles de gestión
	items.Patch("/:id/stock-status", RequireRole("manager", "admin"), stockHandler.SetStockStatus)

	// Libro de máquinas
	machines := api.Group("/machines")
	machineHandler := NewMachineHandler(deps.StockUC)
	machines.Get("/:id", machineHandler.GetByID)
}
