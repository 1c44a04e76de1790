package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockbook-io/stockbook/internal/observability"
	"github.com/stockbook-io/stockbook/internal/reporting"
)

// LowStockScanJob computes the low-stock report on a schedule, logs every
// breach and, as a side effect, warms the report cache for API readers.
type LowStockScanJob struct {
	Reports *reporting.Service
	Logger  *slog.Logger
	Metrics *observability.JobMetrics
	clock   func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler. metrics may
// be nil.
func NewLowStockScanJob(reports *reporting.Service, logger *slog.Logger, metrics *observability.JobMetrics) *LowStockScanJob {
	return &LowStockScanJob{
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("scan_id", payload.ScanID))
	start := j.clock()
	tracker := j.Metrics.Track(TaskTypeLowStockScan)

	rows, err := j.Reports.LowStockReport(ctx)
	if err != nil {
		logger.Error("low stock scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.SetLowStockBreaches(len(rows))

	for _, row := range rows {
		logger.Warn("low stock",
			slog.String("code", row.Product.Code),
			slog.Int64("current_stock", row.CurrentStock),
			slog.Int64("min_stock_level", row.MinStockLevel),
		)
	}
	logger.Info("low stock scan finished",
		slog.Int("breaches", len(rows)),
		slog.Duration("took", j.clock().Sub(start)),
	)
	return tracker.End(nil)
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
