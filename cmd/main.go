package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/petfolio/reminder-dispatch/internal/config"
	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/handler"
	"github.com/petfolio/reminder-dispatch/internal/health"
	"github.com/petfolio/reminder-dispatch/internal/infra/dispatchrecorder"
	"github.com/petfolio/reminder-dispatch/internal/infra/repository"
	"github.com/petfolio/reminder-dispatch/internal/infra/sender"
	"github.com/petfolio/reminder-dispatch/internal/observability"
	"github.com/petfolio/reminder-dispatch/internal/observability/metrics"
	"github.com/petfolio/reminder-dispatch/internal/observability/middleware"
	"github.com/petfolio/reminder-dispatch/internal/service/dispatch"
	"github.com/petfolio/reminder-dispatch/internal/trigger"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceName: "reminder-dispatch",
		Version:     Version,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	dispatchMetrics, err := metrics.NewDispatchMetrics()
	if err != nil {
		slog.Error("failed to initialize dispatch metrics", slog.String("error", err.Error()))
		return 1
	}

	recorderCfg := dispatchrecorder.LoadConfig()
	recorder, err := dispatchrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize dispatch recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close dispatch recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := gorm.Open(gormpostgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		slog.Error("failed to connect postgres",
			slog.String("event", "postgres.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Warn("failed to close postgres connection", slog.String("error", err.Error()))
			}
		}
	}()

	slog.Info("postgres connected")

	var redisClient *redis.Client
	var store domain.DispatchLogStore
	switch cfg.LogBackend {
	case config.BackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			slog.Error("failed to instrument redis tracing",
				slog.String("event", "redis.otel.tracing.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			slog.Error("failed to instrument redis metrics",
				slog.String("event", "redis.otel.metrics.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect redis",
				slog.String("event", "redis.connect.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()

		slog.Info("redis connected", slog.String("addr", cfg.Redis.Addr))
		store = repository.NewRedisDispatchLogStore(redisClient)
	default:
		if err := repository.MigrateDispatchLog(db); err != nil {
			slog.Error("failed to migrate dispatch log", slog.String("error", err.Error()))
			return 1
		}
		store = repository.NewPostgresDispatchLogStore(db)
	}

	slog.Info("dispatch log backend selected", slog.String("backend", string(cfg.LogBackend)))

	scheduleSource := repository.NewPostgresScheduleSource(db)

	senders := []domain.ChannelSender{
		sender.NewRateLimitedSender(
			sender.NewSMSGatewaySender(
				cfg.Channels.SMSGatewayURL,
				cfg.Channels.SMSGatewayToken,
				cfg.Channels.SMSFromNumber,
			),
			cfg.Channels.SMSRatePerSecond,
		),
		sender.NewRateLimitedSender(
			sender.NewSendGridSender(
				cfg.Channels.SendGridAPIKey,
				cfg.Channels.SendGridFromEmail,
				cfg.Channels.SendGridFromName,
			),
			cfg.Channels.EmailRatePerSecond,
		),
	}

	dispatchService := dispatch.NewService(store, scheduleSource, senders, recorder, dispatchMetrics, cfg.Dispatch)
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	checker := health.NewChecker(redisClient, db, Version)

	r := gin.New()
	r.Use(middleware.PanicRecoveryGin())
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths: []string{"/health", "/health/live", "/health/ready"},
	}))

	r.GET("/health", checker.ReadyHandler())
	r.GET("/health/live", checker.LiveHandler())
	r.GET("/health/ready", checker.ReadyHandler())

	api := r.Group("/api/v1")
	api.POST("/dispatch/medications", dispatchHandler.HandleDispatchMedications)
	api.POST("/dispatch/deadlines", dispatchHandler.HandleDispatchDeadlines)

	if cfg.Trigger.Enabled {
		cronTrigger := trigger.NewCronTrigger(dispatchService, cfg.Trigger)
		if err := cronTrigger.Start(ctx); err != nil {
			slog.Error("failed to start cron trigger", slog.String("error", err.Error()))
			return 1
		}
		defer cronTrigger.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("server error", slog.String("error", err.Error()))
		return 1
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
		return 1
	}

	slog.Info("server stopped")
	return 0
}
