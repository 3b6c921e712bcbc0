package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/warehouse-ledger/internal/application/catalog"
	"github.com/jhoicas/warehouse-ledger/internal/application/ingestion"
	"github.com/jhoicas/warehouse-ledger/internal/application/ledger"
	"github.com/jhoicas/warehouse-ledger/internal/application/ports"
	"github.com/jhoicas/warehouse-ledger/internal/application/query"
	"github.com/jhoicas/warehouse-ledger/internal/application/stock"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/scanner"
	httpRouter "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	"github.com/jhoicas/warehouse-ledger/internal/storage"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer repos.Close()

	// Caché de actividad: opcional, si Redis no responde se sigue sin ella.
	var activityCache ports.ActivityCache
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché de actividad desactivada")
		} else {
			activityCache = cache.NewRedisActivityCache(rdb, "", cfg.Redis.TTL)
		}
	}

	appLog := log.Zerolog()
	catalogUC := catalog.NewUseCase(repos.Products, repos.Locations, repos.Suppliers)
	ledgerUC := ledger.NewUseCase(repos.Transactions, repos.Products, repos.Locations)
	stockUC := stock.NewUseCase(repos.Transactions, repos.Products, log.Component("stock"))
	queryUC := query.NewService(repos.Transactions, activityCache, log.Component("query"))
	ingestionSvc := ingestion.NewService(
		ingestion.Config{ScannerURL: cfg.Scanner.URL, ForwardTimeout: cfg.Scanner.Timeout},
		catalogUC, ledgerUC, scanner.NewHTTPForwarder(cfg.Scanner.Timeout), activityCache,
		log.Component("ingestion"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Scanner.Timeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.DocsEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Warehouse Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := repos.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ingestion: ingestionSvc,
		Query:     queryUC,
		Catalog:   catalogUC,
		Ledger:    ledgerUC,
		Stock:     stockUC,
		Log:       appLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
