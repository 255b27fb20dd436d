package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CorpRepo repository.CorporationRepository
	ItemRepo repository.HangarItemRepository
	TxRepo   repository.TransactionRepository
	SnapRepo repository.SnapshotRepository
	LogRepo  repository.ContainerLogRepository
	SyncUC   *sync.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Corporaciones rastreadas
	corps := api.Group("/corporations")
	corpHandler := NewCorporationHandler(deps.CorpRepo, deps.SyncUC)
	corps.Get("/", corpHandler.List)
	corps.Post("/", corpHandler.Register)
	corps.Get("/:id", corpHandler.GetByID)
	corps.Put("/:id/tracking", corpHandler.SetTracking)
	corps.Post("/:id/sync", corpHandler.TriggerSync)

	// Consultas del hangar
	hangarHandler := NewHangarHandler(deps.ItemRepo, deps.TxRepo, deps.SnapRepo, deps.LogRepo)
	corps.Get("/:id/items", hangarHandler.Items)
	corps.Get("/:id/transactions", hangarHandler.Transactions)
	corps.Get("/:id/snapshots", hangarHandler.Snapshots)
	corps.Get("/:id/container-logs", hangarHandler.ContainerLogs)
}
