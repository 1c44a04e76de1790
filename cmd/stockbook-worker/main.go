package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockbook-io/stockbook/internal/app"
	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/ledger"
	"github.com/stockbook-io/stockbook/internal/observability"
	"github.com/stockbook-io/stockbook/internal/platform/db"
	"github.com/stockbook-io/stockbook/internal/projection"
	"github.com/stockbook-io/stockbook/internal/reporting"
	"github.com/stockbook-io/stockbook/jobs"
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

	catalogService := catalog.NewService(catalog.NewRepository(pool), nil)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), nil, nil, nil)
	movementRepo := projection.NewRepository(pool)

	// The worker computes reports without the cache: a scan should always
	// read the ledger, not a stale payload.
	reportingService := reporting.NewService(catalogService, movementRepo, ledgerService, nil)
	scanJob := jobs.NewLowStockScanJob(reportingService, logger, observability.NewJobMetrics(nil))

	scanTask, err := jobs.NewLowStockScanTask(jobs.LowStockScanPayload{RequestedBy: "scheduler"})
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeLowStockScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LowStockCron, Task: scanTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("cron", cfg.LowStockCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
