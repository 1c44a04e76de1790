package reporting

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockbook-io/stockbook/internal/projection"
)

const csvBufferSize = 32 * 1024

var csvPrinter = message.NewPrinter(language.English)

// WriteInventoryCSV streams the full inventory report as CSV: one row per
// product plus a totals line matching the summary.
func WriteInventoryCSV(w io.Writer, snaps []projection.Snapshot) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true

	header := []string{"Code", "Name", "Category", "Unit Price", "Current Stock", "Min Stock", "Stock Value", "Low Stock"}
	if err := writer.Write(header); err != nil {
		return err
	}

	var totalValue float64
	for _, snap := range snaps {
		totalValue += snap.StockValue
		row := []string{
			snap.Product.Code,
			snap.Product.Name,
			string(snap.Product.Category),
			csvPrinter.Sprintf("%.2f", snap.Product.UnitPrice),
			strconv.FormatInt(snap.CurrentStock, 10),
			strconv.FormatInt(snap.Product.MinStockLevel, 10),
			csvPrinter.Sprintf("%.2f", snap.StockValue),
			fmt.Sprintf("%t", snap.IsLowStock),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	totals := []string{"TOTAL", "", "", "", "", "", csvPrinter.Sprintf("%.2f", totalValue), ""}
	if err := writer.Write(totals); err != nil {
		return err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
