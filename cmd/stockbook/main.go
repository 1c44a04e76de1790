package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockbook-io/stockbook/internal/app"
	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/ledger"
	"github.com/stockbook-io/stockbook/internal/observability"
	"github.com/stockbook-io/stockbook/internal/platform/cache"
	"github.com/stockbook-io/stockbook/internal/platform/db"
	"github.com/stockbook-io/stockbook/internal/projection"
	"github.com/stockbook-io/stockbook/internal/reporting"
	"github.com/stockbook-io/stockbook/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	projCache := projection.NewCache(redisClient, cfg.CacheTTL)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, projCache)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger, idempotencyStore, projCache)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	movementRepo := projection.NewRepository(pool)
	projectionService := projection.NewService(movementRepo, catalogService)
	projectionHandler := projection.NewHandler(logger, projectionService)

	reportingService := reporting.NewService(catalogService, movementRepo, ledgerService, projCache)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		CatalogHandler:    catalogHandler,
		LedgerHandler:     ledgerHandler,
		ProjectionHandler: projectionHandler,
		ReportingHandler:  reportingHandler,
		Metrics:           metrics,
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
