package reporting

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/projection"
)

func TestWriteInventoryCSV(t *testing.T) {
	snaps := []projection.Snapshot{
		{
			Product:      catalog.Product{Code: "SKU1", Name: "Widget", Category: catalog.CategoryElectronics, UnitPrice: 10, MinStockLevel: 5},
			CurrentStock: 5,
			StockValue:   50,
			IsLowStock:   true,
		},
		{
			Product:      catalog.Product{Code: "SKU2", Name: "Gadget", Category: catalog.CategoryElectronics, UnitPrice: 1250.5, MinStockLevel: 2},
			CurrentStock: 10,
			StockValue:   12505,
			IsLowStock:   false,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryCSV(&buf, snaps))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 2 rows + totals

	require.Equal(t, "Code", records[0][0])
	require.Equal(t, []string{"SKU1", "Widget", "electronics", "10.00", "5", "5", "50.00", "true"}, records[1])
	require.Equal(t, "1,250.50", records[2][3])
	require.Equal(t, "TOTAL", records[3][0])
	require.Equal(t, "12,555.00", records[3][6])
}

func TestWriteInventoryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventoryCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "0.00", records[1][6])
}
