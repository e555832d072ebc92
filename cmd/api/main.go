package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomasvidal/stockpilot-backend/api/routes"
	"github.com/tomasvidal/stockpilot-backend/internal/audits"
	"github.com/tomasvidal/stockpilot-backend/internal/catalog"
	"github.com/tomasvidal/stockpilot-backend/internal/inventory"
	"github.com/tomasvidal/stockpilot-backend/internal/ledger"
	"github.com/tomasvidal/stockpilot-backend/internal/locations"
	"github.com/tomasvidal/stockpilot-backend/internal/transfers"
	"github.com/tomasvidal/stockpilot-backend/pkg/config"
	"github.com/tomasvidal/stockpilot-backend/pkg/db"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
	"github.com/tomasvidal/stockpilot-backend/pkg/metrics"
	"github.com/tomasvidal/stockpilot-backend/pkg/migrate"
	"github.com/tomasvidal/stockpilot-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	transferRepo := transfers.NewRepository(dbClient.DB())
	auditRepo := audits.NewRepository(dbClient.DB())
	locationRepo := locations.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(inventoryRepo, ledger.NewRecorder(ledgerRepo), dbClient, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo, inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	transferService, err := transfers.NewService(transferRepo, inventoryService, locationRepo, dbClient, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	auditService, err := audits.NewService(auditRepo, inventoryService, locationRepo, dbClient, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	locationService, err := locations.NewService(locationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create location service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			inventoryService,
			ledgerService,
			transferService,
			auditService,
			locationService,
			catalogService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
