package item

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/listing"
)

// Sentinel errors for item lookups and mutations.
var (
	// ErrNotFound is returned when no item, active or deleted, exists under
	// the requested identifier.
	ErrNotFound = errors.New("item not found")
	// ErrDeleted is returned when an update or patch targets a soft-deleted
	// item. Deletion is terminal: a deleted item never becomes active again.
	ErrDeleted = errors.New("item is deleted")
)

// Item represents a sellable catalog entry. IDs are assigned once from a
// per-repository sequence starting at 0 and are never reused.
type Item struct {
	ID      int64
	Name    string
	Price   decimal.Decimal
	Deleted bool
}

// Patch carries the optional fields of a partial update. A nil field leaves
// the stored value unchanged. This is deliberately distinct from Update,
// which always replaces both fields.
type Patch struct {
	Name  *string
	Price *decimal.Decimal
}

// ListQuery describes a filtered, paginated item listing. Soft-deleted items
// are excluded unless ShowDeleted is set.
type ListQuery struct {
	Page        listing.Page
	Price       listing.PriceRange
	ShowDeleted bool
}

// Validate checks pagination and filter bounds.
func (q ListQuery) Validate() error {
	if err := q.Page.Validate(); err != nil {
		return err
	}
	return q.Price.Validate()
}

// Matches reports whether the item passes every predicate of the query.
func (q ListQuery) Matches(it Item) bool {
	if !q.Price.Contains(it.Price) {
		return false
	}
	return q.ShowDeleted || !it.Deleted
}

// Repository defines the catalog operations.
type Repository interface {
	Create(ctx context.Context, name string, price decimal.Decimal) (*Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, q ListQuery) ([]Item, error)
	Update(ctx context.Context, id int64, name string, price decimal.Decimal) (*Item, error)
	Patch(ctx context.Context, id int64, p Patch) (*Item, error)
	Delete(ctx context.Context, id int64) error
}
