package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// Params holds the requested window. Page is 1-based.
type Params struct {
	Page     int `json:"currentPage"`
	PageSize int `json:"pageSize"`
}

// Limits bounds what a caller may request.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits matches the storefront grid: 10 cards per page, at most 100.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: 10, MaxPageSize: 100}
}

// Offset is the number of rows to skip. It saturates at math.MaxInt for
// pages too far out to address.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// FromRequest reads page and pageSize from the query string. Missing or
// malformed values fall back to page 1 and the default size; sizes above the
// maximum are clamped.
func FromRequest(r *http.Request, limits Limits) Params {
	q := r.URL.Query()
	p := Params{Page: 1, PageSize: limits.DefaultPageSize}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}

	size := q.Get("pageSize")
	if size == "" {
		size = q.Get("page_size")
	}
	if v, err := strconv.Atoi(size); err == nil && v > 0 {
		p.PageSize = v
	}
	if limits.MaxPageSize > 0 && p.PageSize > limits.MaxPageSize {
		p.PageSize = limits.MaxPageSize
	}

	return p
}

// TotalPages returns ceil(total / pageSize); zero when there is nothing to show.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
