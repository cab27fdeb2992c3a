// Package listing holds the pagination and filter primitives shared by the
// item and cart list operations.
//
// Pagination is windowed-then-filtered: the offset/limit window is taken over
// the full collection in creation order first, and the predicates are applied
// to that window afterwards. Filtered-out entries are not backfilled from
// beyond the window.
package listing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuery is the root cause for every rejected list query: negative
// offset, non-positive limit, or a negative filter bound.
var ErrInvalidQuery = errors.New("invalid list query")

// Page selects a window of a collection in creation order.
type Page struct {
	Offset int
	Limit  int
}

// Validate rejects negative offsets and non-positive limits.
func (p Page) Validate() error {
	if p.Offset < 0 {
		return errors.Wrap(ErrInvalidQuery, "offset must be non-negative")
	}
	if p.Limit <= 0 {
		return errors.Wrap(ErrInvalidQuery, "limit must be positive")
	}
	return nil
}

// Window clips [Offset, Offset+Limit) to a collection of the given size and
// returns the half-open index range to scan. An offset at or past the end
// yields an empty range.
func (p Page) Window(size int) (lo, hi int) {
	if p.Offset >= size {
		return 0, 0
	}
	hi = p.Offset + p.Limit
	if hi > size {
		hi = size
	}
	return p.Offset, hi
}

// PriceRange is an optional inclusive price interval. Nil bounds impose no
// constraint.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Validate rejects negative bounds.
func (r PriceRange) Validate() error {
	if r.Min != nil && r.Min.IsNegative() {
		return errors.Wrap(ErrInvalidQuery, "min price must be non-negative")
	}
	if r.Max != nil && r.Max.IsNegative() {
		return errors.Wrap(ErrInvalidQuery, "max price must be non-negative")
	}
	return nil
}

// Contains reports whether v satisfies both bounds.
func (r PriceRange) Contains(v decimal.Decimal) bool {
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// QuantityRange is an optional inclusive quantity interval. Nil bounds impose
// no constraint.
type QuantityRange struct {
	Min *int
	Max *int
}

// Validate rejects negative bounds.
func (r QuantityRange) Validate() error {
	if r.Min != nil && *r.Min < 0 {
		return errors.Wrap(ErrInvalidQuery, "min quantity must be non-negative")
	}
	if r.Max != nil && *r.Max < 0 {
		return errors.Wrap(ErrInvalidQuery, "max quantity must be non-negative")
	}
	return nil
}

// Contains reports whether v satisfies both bounds.
func (r QuantityRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}
