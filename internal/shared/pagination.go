package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata. perPage <= 0 means the
// listing was not paginated and everything fits on one page.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		return Pagination{Page: 1, PerPage: total, Total: total, TotalPages: 1}
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset converts 1-based page numbering into a row offset.
func Offset(page, perPage int) int {
	offset := (page - 1) * perPage
	if offset < 0 {
		return 0
	}
	return offset
}
