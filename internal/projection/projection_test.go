package projection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/ledger"
)

func TestMovementNet(t *testing.T) {
	var m Movement
	m.Apply(ledger.TypeIn, 20)
	m.Apply(ledger.TypeOut, 18)
	m.Apply(ledger.TypeAdjust, 3)

	require.EqualValues(t, 20, m.StockIn)
	require.EqualValues(t, 18, m.StockOut)
	require.EqualValues(t, 3, m.Adjustment)
	require.EqualValues(t, 5, m.Net())
}

func TestSnapZeroMovements(t *testing.T) {
	product := catalog.Product{ID: 1, Code: "SKU1", UnitPrice: 10, MinStockLevel: 5}

	snap := Snap(product, Movement{})
	require.EqualValues(t, 0, snap.CurrentStock)
	require.EqualValues(t, 0, snap.StockValue)
	require.True(t, snap.IsLowStock)
}

func TestSnapLowStockBoundary(t *testing.T) {
	product := catalog.Product{ID: 1, Code: "SKU1", UnitPrice: 10, MinStockLevel: 5}

	// Exactly at the threshold counts as low stock.
	snap := Snap(product, Movement{StockIn: 5})
	require.EqualValues(t, 5, snap.CurrentStock)
	require.True(t, snap.IsLowStock)

	snap = Snap(product, Movement{StockIn: 6})
	require.False(t, snap.IsLowStock)
}
