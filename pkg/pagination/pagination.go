package pagination

import (
	"strings"
)

const (
	// DefaultPage is used when the page query parameter is missing or invalid.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit], applying defaults for zero values.
func Normalize(page, limit int) Params {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for the current page.
func (p Params) Offset() int {
	n := Normalize(p.Page, p.Limit)
	return (n.Page - 1) * n.Limit
}

// Meta is the pagination block returned with list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewMeta derives page counts from the total row count.
func NewMeta(p Params, total int64) Meta {
	n := Normalize(p.Page, p.Limit)
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Meta{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: pages,
		HasMore:    n.Page < pages,
	}
}

// Sort is a validated column/direction pair safe to interpolate into ORDER BY.
type Sort struct {
	Column    string
	Direction string
}

// Clause renders the ORDER BY fragment.
func (s Sort) Clause() string {
	return s.Column + " " + s.Direction
}

// ParseSort resolves a client sort field against an allow-list mapping API names to columns.
// Unknown fields fall back to defaultField and unknown directions to desc.
func ParseSort(field, order string, allowed map[string]string, defaultField string) Sort {
	column, ok := allowed[strings.TrimSpace(field)]
	if !ok {
		column = allowed[defaultField]
	}
	direction := "desc"
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		direction = "asc"
	}
	return Sort{Column: column, Direction: direction}
}
