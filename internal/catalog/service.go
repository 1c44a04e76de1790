package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/stockbook-io/stockbook/internal/shared"
)

// ProjectionInvalidator invalidates cached stock projections after catalog
// mutations; a price or threshold change alters derived stock values.
type ProjectionInvalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates catalog maintenance.
type Service struct {
	repo  Repository
	cache ProjectionInvalidator
}

// NewService builds Service. cache may be nil.
func NewService(repo Repository, cache ProjectionInvalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

// GetByCode looks a product up by its normalized code.
func (s *Service) GetByCode(ctx context.Context, code string) (Product, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Product{}, shared.Validationf("product code is required")
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.Code = NormalizeCode(product.Code)
	if err := validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.bump(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, product Product) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	product.Code = NormalizeCode(product.Code)
	if err := validate(product); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, product)
	if err != nil {
		return Product{}, err
	}
	s.bump(ctx)
	return updated, nil
}

// Delete removes a product and, by cascade, every ledger line referencing
// it. Administrative use only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

// NormalizeCode trims and upper-cases a product code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validate(p Product) error {
	if p.Code == "" {
		return shared.Validationf("product code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return shared.Validationf("product name is required")
	}
	if !p.Category.Valid() {
		return shared.Validationf("unknown category %q", p.Category)
	}
	if p.UnitPrice <= 0 {
		return shared.Validationf("unit price must be greater than 0")
	}
	if p.MinStockLevel < 0 {
		return shared.Validationf("minimum stock level must not be negative")
	}
	return nil
}
