// Package projection derives stock quantity and value from the ledger.
// Nothing here is ever stored: every figure is recomputed from the full
// line-item history, so there is no counter to drift and concurrent posts
// cannot race a running total.
package projection

import (
	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/ledger"
)

// Movement aggregates line quantities for one product, partitioned by the
// type of the owning transaction.
type Movement struct {
	StockIn    int64
	StockOut   int64
	Adjustment int64
}

// Apply adds a line quantity to the bucket for its transaction type.
func (m *Movement) Apply(t ledger.Type, qty int64) {
	switch t {
	case ledger.TypeIn:
		m.StockIn += qty
	case ledger.TypeOut:
		m.StockOut += qty
	case ledger.TypeAdjust:
		// Adjustments always add; downward corrections are OUT movements.
		m.Adjustment += qty
	}
}

// Net returns the current stock level.
func (m Movement) Net() int64 {
	return m.StockIn - m.StockOut + m.Adjustment
}

// Snapshot is the point-in-time stock position of one product, valued at
// the current catalog price rather than historical line cost.
type Snapshot struct {
	Product      catalog.Product `json:"product"`
	CurrentStock int64           `json:"current_stock"`
	StockValue   float64         `json:"stock_value"`
	IsLowStock   bool            `json:"is_low_stock"`
}

// Snap builds the snapshot for a product from its movement totals. A
// product with no movements has stock 0 and value 0.
func Snap(product catalog.Product, movement Movement) Snapshot {
	stock := movement.Net()
	return Snapshot{
		Product:      product,
		CurrentStock: stock,
		StockValue:   float64(stock) * product.UnitPrice,
		IsLowStock:   stock <= product.MinStockLevel,
	}
}
