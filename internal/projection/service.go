package projection

import (
	"context"

	"github.com/stockbook-io/stockbook/internal/catalog"
)

// ProductSource resolves product definitions for valuation.
type ProductSource interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// Service answers point-in-time stock questions for single products.
// Portfolio-wide queries go through TotalsAll to stay a single aggregate
// query; see the reporting package.
type Service struct {
	repo     MovementRepository
	products ProductSource
}

// NewService builds Service.
func NewService(repo MovementRepository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// Snapshot derives the full stock position of one product. An unknown
// product fails with NotFound; a known product with no movements yields
// stock 0, value 0.
func (s *Service) Snapshot(ctx context.Context, productID int64) (Snapshot, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return Snapshot{}, err
	}
	movement, err := s.repo.Totals(ctx, productID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snap(product, movement), nil
}

// CurrentStock derives the stock quantity of one product.
func (s *Service) CurrentStock(ctx context.Context, productID int64) (int64, error) {
	snap, err := s.Snapshot(ctx, productID)
	if err != nil {
		return 0, err
	}
	return snap.CurrentStock, nil
}

// StockValue derives the stock value of one product at the current catalog
// price.
func (s *Service) StockValue(ctx context.Context, productID int64) (float64, error) {
	snap, err := s.Snapshot(ctx, productID)
	if err != nil {
		return 0, err
	}
	return snap.StockValue, nil
}

// IsLowStock reports whether the product sits at or below its threshold.
func (s *Service) IsLowStock(ctx context.Context, productID int64) (bool, error) {
	snap, err := s.Snapshot(ctx, productID)
	if err != nil {
		return false, err
	}
	return snap.IsLowStock, nil
}
