package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/islandhop/tripinit/internal/adapters/http"
	natsadapter "github.com/islandhop/tripinit/internal/adapters/nats"
	"github.com/islandhop/tripinit/internal/adapters/postgres"
	"github.com/islandhop/tripinit/internal/adapters/valkey"
	"github.com/islandhop/tripinit/internal/core/ports"
	"github.com/islandhop/tripinit/internal/core/usecases"
	"github.com/islandhop/tripinit/internal/pkg/config"
	"github.com/islandhop/tripinit/internal/pkg/logging"
	"github.com/islandhop/tripinit/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tripinit-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	planRepo := postgres.NewTripPlanRepo(db)
	vehicleRepo := postgres.NewVehicleTariffRepo(db)
	guideRepo := postgres.NewGuideTariffRepo(db)
	initiatedRepo := postgres.NewInitiatedTripRepo(db)

	// Use cases. The nil-able cache and publisher are passed through as
	// interfaces, so a missing backend degrades to direct DB reads.
	tariffSvc := newTariffService(vehicleRepo, guideRepo, cache, nc)
	initiationSvc := newInitiationService(planRepo, initiatedRepo, tariffSvc, nc, cache)

	deps := &http.Dependencies{
		Initiations: initiationSvc,
		Tariffs:     tariffSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "TripInit API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.islandhop.lk",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// newTariffService keeps typed-nil interface values out of the service when a
// backend failed to come up.
func newTariffService(vehicles *postgres.VehicleTariffRepo, guides *postgres.GuideTariffRepo, cache *valkey.Cache, events *natsadapter.Publisher) *usecases.TariffService {
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var eventSvc ports.EventPublisher
	if events != nil {
		eventSvc = events
	}
	return usecases.NewTariffService(vehicles, guides, cacheSvc, eventSvc)
}

func newInitiationService(plans *postgres.TripPlanRepo, initiated *postgres.InitiatedTripRepo, tariffs *usecases.TariffService, events *natsadapter.Publisher, cache *valkey.Cache) *usecases.InitiationService {
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var eventSvc ports.EventPublisher
	if events != nil {
		eventSvc = events
	}
	return usecases.NewInitiationService(plans, initiated, tariffs, eventSvc, cacheSvc)
}
