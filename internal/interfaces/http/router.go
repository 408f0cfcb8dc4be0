package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/auth"
	"github.com/tu-usuario/stock-ledger/internal/application/catalog"
	"github.com/tu-usuario/stock-ledger/internal/application/idempotency"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/reservation"
	"github.com/tu-usuario/stock-ledger/internal/application/transfer"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.UseCase
	CatalogUC     *catalog.UseCase
	InventoryUC   *inventory.UseCase
	ReservationUC *reservation.UseCase
	TransferUC    *transfer.UseCase
	Guard         *idempotency.Guard
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token); el guard de idempotencia
	// corre después del auth porque necesita el tenant del token.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), IdempotencyMiddleware(deps.Guard))

	// Las mutaciones exigen rol admin u operator; los viewers solo leen.
	canWrite := RequireRole(entity.RoleAdmin, entity.RoleOperator)

	// Catálogo (protegido)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	items := protected.Group("/items")
	items.Post("/", canWrite, catalogHandler.CreateItem)
	items.Get("/", catalogHandler.ListItems)
	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", canWrite, catalogHandler.CreateWarehouse)
	warehouses.Get("/", catalogHandler.ListWarehouses)
	locations := protected.Group("/locations")
	locations.Post("/", canWrite, catalogHandler.CreateLocation)
	locations.Get("/", catalogHandler.ListLocations)

	// Inventario: mutaciones del ledger y lecturas (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/receipts", canWrite, inventoryHandler.Receipt)
	invGroup.Post("/issues", canWrite, inventoryHandler.Issue)
	invGroup.Post("/adjustments", canWrite, inventoryHandler.Adjust)
	invGroup.Get("/balances", inventoryHandler.Balances)
	invGroup.Get("/movements", inventoryHandler.Movements)

	// Reservas (protegido)
	reservations := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.ReservationUC)
	reservations.Post("/", canWrite, reservationHandler.Create)
	reservations.Get("/", reservationHandler.List)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/confirm", canWrite, reservationHandler.Confirm)
	reservations.Post("/:id/release", canWrite, reservationHandler.Release)
	reservations.Post("/:id/cancel", canWrite, reservationHandler.Cancel)

	// Traslados (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", canWrite, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/commit", canWrite, transferHandler.Commit)
	transfers.Post("/:id/ship", canWrite, transferHandler.Ship)
	transfers.Post("/:id/receive", canWrite, transferHandler.Receive)
	transfers.Post("/:id/cancel", canWrite, transferHandler.Cancel)
}
