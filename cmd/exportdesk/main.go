package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exportdesk/exportdesk/internal/app"
	"github.com/exportdesk/exportdesk/internal/observability"
	"github.com/exportdesk/exportdesk/internal/platform/cache"
	"github.com/exportdesk/exportdesk/internal/platform/db"
	"github.com/exportdesk/exportdesk/internal/shared"
	"github.com/exportdesk/exportdesk/internal/shipment"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The snapshot cache is an optimisation; run without it.
		logger.Warn("redis unavailable, snapshot cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	repo := shipment.NewRepository(dbpool)
	snapshotCache := shipment.NewCache(redisClient, cfg.SnapshotCacheTTL)
	service := shipment.NewService(logger, repo, snapshotCache, auditLogger, metrics)

	manager := shipment.NewManager(logger, service, metrics, shipment.ManagerConfig{
		AutosaveDelay: cfg.AutosaveDelay,
		IdleTTL:       cfg.SessionIdleTTL,
	})
	defer manager.Shutdown()

	editorHandler := shipment.NewHandler(logger, manager)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		EditorHandler: editorHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
