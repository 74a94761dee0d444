package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sampleloop/sampleloop-backend/api/routes"
	"github.com/sampleloop/sampleloop-backend/internal/conversions"
	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/notifications"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/internal/points"
	"github.com/sampleloop/sampleloop-backend/internal/products"
	"github.com/sampleloop/sampleloop-backend/internal/receiving"
	"github.com/sampleloop/sampleloop-backend/internal/stores"
	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/metrics"
	"github.com/sampleloop/sampleloop-backend/pkg/migrate"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
	"github.com/sampleloop/sampleloop-backend/pkg/redis"
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

	services, err := buildServices(dbClient, redisClient, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, services),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(dbClient *db.Client, redisClient *redis.Client, cfg *config.Config, logg *logger.Logger) (routes.Services, error) {
	gdb := dbClient.DB()

	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	inventorySvc, err := inventory.NewService(inventory.NewRepository(gdb), dbClient, outboxSvc, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	receivingSvc, err := receiving.NewService(receiving.NewRepository(gdb), dbClient, inventorySvc)
	if err != nil {
		return routes.Services{}, err
	}
	displaysSvc, err := displays.NewService(displays.NewRepository(gdb), dbClient, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}
	pointsSvc, err := points.NewService(points.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	fulfillmentSvc, err := fulfillment.NewService(fulfillment.NewRepository(gdb), dbClient, inventorySvc, pointsSvc, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}
	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	orgsSvc, err := orgs.NewService(orgs.NewRepository(gdb), redisClient, cfg.Org, logg)
	if err != nil {
		return routes.Services{}, err
	}
	storesSvc, err := stores.NewService(stores.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	productsSvc, err := products.NewService(products.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	conversionsRec, err := conversions.NewRecorder(conversions.NewRepository(gdb), orgsSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Inventory:     inventorySvc,
		Receiving:     receivingSvc,
		Displays:      displaysSvc,
		Fulfillment:   fulfillmentSvc,
		Notifications: notificationsSvc,
		Orgs:          orgsSvc,
		Stores:        storesSvc,
		Products:      productsSvc,
		Points:        pointsSvc,
		Conversions:   conversionsRec,
	}, nil
}
