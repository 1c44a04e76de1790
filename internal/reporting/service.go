// Package reporting composes the catalog and the projection engine into
// portfolio-wide reports.
package reporting

import (
	"context"

	"github.com/stockbook-io/stockbook/internal/catalog"
	"github.com/stockbook-io/stockbook/internal/projection"
)

// CatalogPort lists product definitions in catalog order.
type CatalogPort interface {
	List(ctx context.Context, filters catalog.ListFilters) ([]catalog.Product, error)
}

// LedgerPort counts posted transactions.
type LedgerPort interface {
	Count(ctx context.Context) (int64, error)
}

// LowStockRow is one entry of the low-stock report.
type LowStockRow struct {
	Product       catalog.Product `json:"product"`
	CurrentStock  int64           `json:"current_stock"`
	MinStockLevel int64           `json:"min_stock_level"`
}

// Summary aggregates the whole portfolio.
type Summary struct {
	TotalProducts         int64   `json:"total_products"`
	TotalStockValue       float64 `json:"total_stock_value"`
	LowStockItemCount     int64   `json:"low_stock_item_count"`
	TotalTransactionCount int64   `json:"total_transaction_count"`
}

// Service builds reports. Every report derives from one batch aggregation
// over the ledger plus one catalog listing; there is no per-product query
// loop. Payloads are cached under the projection cache version, so a post
// or catalog change invalidates them wholesale.
type Service struct {
	catalog   CatalogPort
	movements projection.MovementRepository
	ledger    LedgerPort
	cache     *projection.Cache
}

// NewService builds Service. cache may be nil.
func NewService(catalogPort CatalogPort, movements projection.MovementRepository, ledgerPort LedgerPort, cache *projection.Cache) *Service {
	return &Service{catalog: catalogPort, movements: movements, ledger: ledgerPort, cache: cache}
}

// FullReport returns the stock position of every product, ordered by code.
func (s *Service) FullReport(ctx context.Context) ([]projection.Snapshot, error) {
	key, err := s.cache.BuildKey(ctx, "stockbook", "report", "full")
	if err != nil {
		return nil, err
	}
	var snaps []projection.Snapshot
	err = s.cache.FetchJSON(ctx, key, &snaps, func(ctx context.Context) (any, error) {
		return s.buildSnapshots(ctx)
	})
	return snaps, err
}

// LowStockReport returns every product at or below its minimum stock
// threshold, in catalog order.
func (s *Service) LowStockReport(ctx context.Context) ([]LowStockRow, error) {
	snaps, err := s.FullReport(ctx)
	if err != nil {
		return nil, err
	}
	rows := []LowStockRow{}
	for _, snap := range snaps {
		if snap.IsLowStock {
			rows = append(rows, LowStockRow{
				Product:       snap.Product,
				CurrentStock:  snap.CurrentStock,
				MinStockLevel: snap.Product.MinStockLevel,
			})
		}
	}
	return rows, nil
}

// SummaryReport returns the portfolio totals. TotalTransactionCount always
// matches the ledger's own count.
func (s *Service) SummaryReport(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "stockbook", "report", "summary")
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		snaps, err := s.buildSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		txCount, err := s.ledger.Count(ctx)
		if err != nil {
			return nil, err
		}
		out := Summary{
			TotalProducts:         int64(len(snaps)),
			TotalTransactionCount: txCount,
		}
		for _, snap := range snaps {
			out.TotalStockValue += snap.StockValue
			if snap.IsLowStock {
				out.LowStockItemCount++
			}
		}
		return out, nil
	})
	return summary, err
}

func (s *Service) buildSnapshots(ctx context.Context) ([]projection.Snapshot, error) {
	products, err := s.catalog.List(ctx, catalog.ListFilters{})
	if err != nil {
		return nil, err
	}
	totals, err := s.movements.TotalsAll(ctx)
	if err != nil {
		return nil, err
	}
	snaps := make([]projection.Snapshot, 0, len(products))
	for _, product := range products {
		snaps = append(snaps, projection.Snap(product, totals[product.ID]))
	}
	return snaps, nil
}
