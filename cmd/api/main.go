package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tu-usuario/stock-ledger/internal/application/auth"
	"github.com/tu-usuario/stock-ledger/internal/application/catalog"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/idempotency"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/application/reservation"
	"github.com/tu-usuario/stock-ledger/internal/application/transfer"
	"github.com/tu-usuario/stock-ledger/internal/infrastructure/events"
	"github.com/tu-usuario/stock-ledger/internal/infrastructure/metrics"
	"github.com/tu-usuario/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/stock-ledger/internal/interfaces/http"
	"github.com/tu-usuario/stock-ledger/pkg/config"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("migraciones aplicadas")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	var engineMetrics engine.Metrics = engine.NopMetrics{}
	if cfg.Metrics.Enabled {
		engineMetrics = metrics.NewRecorder(nil)
	}

	var publisher engine.Publisher = engine.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Component("events"))
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	eng := engine.New(
		cfg.Inventory.AllowNegativeStock,
		cfg.Inventory.MaxRetries,
		log.Component("engine"),
		engine.WithMetrics(engineMetrics),
	)
	validator := refs.NewValidator(itemRepo, warehouseRepo, locationRepo)
	guard := idempotency.NewGuard(
		idempotencyRepo,
		time.Duration(cfg.Inventory.IdempotencyTTLHours)*time.Hour,
		engineMetrics,
		log.Component("idempotency"),
	)
	// Barrido periódico de claves vencidas: sin esto las filas viejas se
	// acumulan y una clave re-usada tras el TTL quedaría sin proteger.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go guard.SweepEvery(sweepCtx, time.Hour)

	inventoryUC := inventory.NewUseCase(eng, txRunner, validator, balanceRepo, movementRepo, publisher)
	reservationUC := reservation.NewUseCase(eng, txRunner, validator, reservationRepo, publisher)
	transferUC := transfer.NewUseCase(eng, txRunner, validator, transferRepo, publisher)
	catalogUC := catalog.NewUseCase(itemRepo, warehouseRepo, locationRepo)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CatalogUC:     catalogUC,
		InventoryUC:   inventoryUC,
		ReservationUC: reservationUC,
		TransferUC:    transferUC,
		Guard:         guard,
		JWTSecret:     cfg.JWT.Secret,
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
