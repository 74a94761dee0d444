package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sampleloop/sampleloop-backend/internal/conversions"
	"github.com/sampleloop/sampleloop-backend/internal/notifications"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/internal/worker"
	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox/idempotency"
	"github.com/sampleloop/sampleloop-backend/pkg/redis"
)

const idempotencyTTL = 7 * 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	gdb := dbClient.DB()

	orgsSvc, err := orgs.NewService(orgs.NewRepository(gdb), redisClient, cfg.Org, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire orgs service", err)
		os.Exit(1)
	}

	recorder, err := conversions.NewRecorder(conversions.NewRepository(gdb), orgsSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire attribution recorder", err)
		os.Exit(1)
	}

	// No external delivery provider is wired yet, so sms and email channels
	// are skipped and only in_app rows are written.
	dispatcher, err := notifications.NewDispatcher(notifications.NewRepository(gdb), orgsSvc, nil, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire notification dispatcher", err)
		os.Exit(1)
	}

	idem, err := idempotency.NewManager(redisClient, idempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to wire idempotency manager", err)
		os.Exit(1)
	}

	svc, err := worker.NewService(worker.ServiceParams{
		Config:     cfg,
		Logger:     logg,
		Repository: outbox.NewRepository(gdb),
		Handlers: []worker.NamedHandler{
			{Name: "attribution-recorder", Handler: recorder},
			{Name: "notification-dispatcher", Handler: dispatcher},
		},
		Idempotency: idem,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting outbox worker")

	if err := svc.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(ctx, "outbox worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "outbox worker shut down")
}
