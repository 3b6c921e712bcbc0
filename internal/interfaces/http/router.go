package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/application/catalog"
	"github.com/jhoicas/warehouse-ledger/internal/application/ingestion"
	"github.com/jhoicas/warehouse-ledger/internal/application/ledger"
	"github.com/jhoicas/warehouse-ledger/internal/application/query"
	"github.com/jhoicas/warehouse-ledger/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ingestion *ingestion.Service
	Query     *query.Service
	Catalog   *catalog.UseCase
	Ledger    *ledger.UseCase
	Stock     *stock.UseCase
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app fiber.Router, deps RouterDeps) {
	api := app.Group("/api", AccessLog(deps.Log))

	inventoryHandler := NewInventoryHandler(deps.Ingestion, deps.Query)
	api.Get("/inventory", inventoryHandler.List)
	api.Post("/inventory", inventoryHandler.Create)

	stockHandler := NewStockHandler(deps.Stock)
	api.Get("/stock", stockHandler.Report)
	api.Get("/stock/:product_id", stockHandler.GetByProduct)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Catalog, deps.Ledger)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id", productHandler.Update)
	products.Get("/:id/transactions", productHandler.Transactions)

	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.Catalog)
	locations.Get("/", locationHandler.List)
	locations.Post("/", locationHandler.Create)

	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.Catalog)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", supplierHandler.Create)
}

// AccessLog registra método, ruta, estado y latencia de cada petición.
func AccessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("petición HTTP")
		return err
	}
}
