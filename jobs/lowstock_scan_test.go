package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/projection"
	"github.com/stockbook-io/stockbook/internal/reporting"
)

type fakeCatalog struct {
	products []catalog.Product
}

func (f *fakeCatalog) List(ctx context.Context, filters catalog.ListFilters) ([]catalog.Product, error) {
	return f.products, nil
}

type fakeMovements struct {
	totals map[int64]projection.Movement
}

func (f *fakeMovements) Totals(ctx context.Context, productID int64) (projection.Movement, error) {
	return f.totals[productID], nil
}

func (f *fakeMovements) TotalsAll(ctx context.Context) (map[int64]projection.Movement, error) {
	return f.totals, nil
}

type fakeLedger struct{}

func (fakeLedger) Count(ctx context.Context) (int64, error) { return 0, nil }

func scanJob(t *testing.T) *LowStockScanJob {
	t.Helper()
	reports := reporting.NewService(
		&fakeCatalog{products: []catalog.Product{
			{ID: 1, Code: "SKU1", Name: "Widget", Category: catalog.CategoryElectronics, UnitPrice: 10, MinStockLevel: 5},
		}},
		&fakeMovements{totals: map[int64]projection.Movement{
			1: {StockIn: 4},
		}},
		fakeLedger{},
		nil,
	)
	return NewLowStockScanJob(reports, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestLowStockScanHandle(t *testing.T) {
	job := scanJob(t)

	task, err := NewLowStockScanTask(LowStockScanPayload{RequestedBy: "cron"})
	require.NoError(t, err)

	var payload LowStockScanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.NotEmpty(t, payload.ScanID)
	require.Equal(t, TaskTypeLowStockScan, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
}

func TestLowStockScanBadPayload(t *testing.T) {
	job := scanJob(t)

	task := asynq.NewTask(TaskTypeLowStockScan, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLowStockScanUnconfigured(t *testing.T) {
	var job *LowStockScanJob
	task := asynq.NewTask(TaskTypeLowStockScan, nil)
	require.Error(t, job.Handle(context.Background(), task))
}
