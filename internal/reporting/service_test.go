package reporting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/projection"
)

type fakeCatalog struct {
	products []catalog.Product
}

func (f *fakeCatalog) List(ctx context.Context, filters catalog.ListFilters) ([]catalog.Product, error) {
	return f.products, nil
}

type fakeMovements struct {
	totals map[int64]projection.Movement
	calls  int
}

func (f *fakeMovements) Totals(ctx context.Context, productID int64) (projection.Movement, error) {
	return f.totals[productID], nil
}

func (f *fakeMovements) TotalsAll(ctx context.Context) (map[int64]projection.Movement, error) {
	f.calls++
	return f.totals, nil
}

type fakeLedger struct {
	count int64
}

func (f *fakeLedger) Count(ctx context.Context) (int64, error) {
	return f.count, nil
}

func fixtureService() (*Service, *fakeMovements, *fakeLedger) {
	cat := &fakeCatalog{products: []catalog.Product{
		{ID: 1, Code: "BK-01", Name: "Paperback", Category: catalog.CategoryBooks, UnitPrice: 8, MinStockLevel: 3},
		{ID: 2, Code: "SKU1", Name: "Widget", Category: catalog.CategoryElectronics, UnitPrice: 10, MinStockLevel: 5},
		{ID: 3, Code: "SKU2", Name: "Gadget", Category: catalog.CategoryElectronics, UnitPrice: 20, MinStockLevel: 2},
	}}
	movements := &fakeMovements{totals: map[int64]projection.Movement{
		2: {StockIn: 20, StockOut: 18, Adjustment: 3}, // stock 5, at threshold
		3: {StockIn: 10},                              // stock 10, healthy
		// product 1 has no movements at all
	}}
	ledgerPort := &fakeLedger{count: 4}
	return NewService(cat, movements, ledgerPort, nil), movements, ledgerPort
}

func TestFullReport(t *testing.T) {
	svc, movements, _ := fixtureService()

	snaps, err := svc.FullReport(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	// Catalog order, never re-queried per product.
	require.Equal(t, "BK-01", snaps[0].Product.Code)
	require.Equal(t, "SKU1", snaps[1].Product.Code)
	require.Equal(t, "SKU2", snaps[2].Product.Code)
	require.Equal(t, 1, movements.calls)

	// Unreferenced product derives to zero, not an error.
	require.EqualValues(t, 0, snaps[0].CurrentStock)
	require.EqualValues(t, 0, snaps[0].StockValue)
	require.True(t, snaps[0].IsLowStock)

	require.EqualValues(t, 5, snaps[1].CurrentStock)
	require.InDelta(t, 50.0, snaps[1].StockValue, 0.0001)
	require.True(t, snaps[1].IsLowStock)

	require.EqualValues(t, 10, snaps[2].CurrentStock)
	require.InDelta(t, 200.0, snaps[2].StockValue, 0.0001)
	require.False(t, snaps[2].IsLowStock)
}

func TestLowStockReport(t *testing.T) {
	svc, _, _ := fixtureService()

	rows, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "BK-01", rows[0].Product.Code)
	require.Equal(t, "SKU1", rows[1].Product.Code)
	require.EqualValues(t, 5, rows[1].CurrentStock)
	require.EqualValues(t, 5, rows[1].MinStockLevel)
}

func TestSummaryReport(t *testing.T) {
	svc, _, ledgerPort := fixtureService()

	summary, err := svc.SummaryReport(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, summary.TotalProducts)
	require.EqualValues(t, 2, summary.LowStockItemCount)
	require.InDelta(t, 250.0, summary.TotalStockValue, 0.0001)
	require.Equal(t, ledgerPort.count, summary.TotalTransactionCount)
}
