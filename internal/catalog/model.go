package catalog

import (
	"time"
)

// Category enumerates the supported product categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// Valid reports whether the category is one of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFood, CategoryBooks, CategoryOther:
		return true
	}
	return false
}

// Product represents a product definition. Stock quantity and value are
// never stored here; they are derived from the ledger on demand.
type Product struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	UnitPrice     float64   `json:"unit_price"`
	MinStockLevel int64     `json:"min_stock_level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListFilters narrows List results. Search matches a case-insensitive
// substring against code or name.
type ListFilters struct {
	Category Category
	Search   string
}
