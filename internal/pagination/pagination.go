// Package pagination holds the offset/page-size math and the result
// envelope shared by every list query.
package pagination

import "api_commerce/internal/apperror"

// Pagination is a 1-based page window.
type Pagination struct {
	Page    int `json:"page" form:"page"`
	PerPage int `json:"per_page" form:"per_page"`
}

// Offset returns the number of rows preceding the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Validate rejects windows that would produce a negative offset or an
// empty/oversized page.
func (p Pagination) Validate(maxPerPage int) error {
	if p.Page < 1 {
		return apperror.Validation("page must be greater than or equal to 1")
	}
	if p.PerPage < 1 {
		return apperror.Validation("per_page must be greater than or equal to 1")
	}
	if maxPerPage > 0 && p.PerPage > maxPerPage {
		return apperror.Validation("per_page must be less than or equal to %d", maxPerPage)
	}
	return nil
}

// Result is the envelope returned by paginated queries. TotalItems counts
// every matching row, independent of the page window.
type Result[T any] struct {
	Items       []T `json:"items"`
	ItemsCount  int `json:"items_count"`
	TotalItems  int `json:"total_items"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// NewResult builds an envelope for items within window p.
func NewResult[T any](p Pagination, totalItems int, items []T) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:       items,
		ItemsCount:  len(items),
		TotalItems:  totalItems,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
	}
}

// Empty returns an envelope with no items.
func Empty[T any](p Pagination, totalItems int) Result[T] {
	return NewResult[T](p, totalItems, nil)
}

// TotalPages returns ceil(TotalItems / PerPage).
func (r Result[T]) TotalPages() int {
	if r.PerPage <= 0 {
		return 0
	}
	return (r.TotalItems + r.PerPage - 1) / r.PerPage
}

// Map converts the items of r, keeping every counter.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	items := make([]U, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, fn(item))
	}
	return Result[U]{
		Items:       items,
		ItemsCount:  r.ItemsCount,
		TotalItems:  r.TotalItems,
		CurrentPage: r.CurrentPage,
		PerPage:     r.PerPage,
	}
}

// Window returns the slice of items that page p selects out of all.
// Adapters that hold their rows in memory use it for LIMIT/OFFSET.
func Window[T any](all []T, p Pagination) []T {
	start := p.Offset()
	if start < 0 || start >= len(all) {
		return nil
	}
	end := start + p.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
