package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/listing"
)

// ErrNotFound is returned when no cart exists under the requested identifier.
var ErrNotFound = errors.New("cart not found")

// Line is a denormalized snapshot of a catalog item inside a cart. ItemName
// is copied when the line is created and is not re-synchronized with later
// item renames. Available is always true today; it is reserved for future
// stock semantics.
type Line struct {
	ItemID    int64
	ItemName  string
	Quantity  int
	Available bool
}

// Cart holds an ordered set of lines, at most one per distinct item id.
// Price is an accumulator, not a derived value: every add operation adds the
// item's price at that moment, and later price changes on the item never
// retroactively adjust it.
type Cart struct {
	ID    int64
	Items []Line
	Price decimal.Decimal
}

// Quantity returns the total quantity across all lines, 0 for an empty cart.
func (c *Cart) Quantity() int {
	var total int
	for _, l := range c.Items {
		total += l.Quantity
	}
	return total
}

// Snapshot captures the item state observed at add time. UnitPrice is what
// the cart accumulator is incremented by.
type Snapshot struct {
	ItemID    int64
	ItemName  string
	UnitPrice decimal.Decimal
}

// ListQuery describes a filtered, paginated cart listing. Price bounds test
// the cart accumulator; quantity bounds test the sum of line quantities.
type ListQuery struct {
	Page     listing.Page
	Price    listing.PriceRange
	Quantity listing.QuantityRange
}

// Validate checks pagination and filter bounds.
func (q ListQuery) Validate() error {
	if err := q.Page.Validate(); err != nil {
		return err
	}
	if err := q.Price.Validate(); err != nil {
		return err
	}
	return q.Quantity.Validate()
}

// Matches reports whether the cart passes every predicate of the query.
func (q ListQuery) Matches(c Cart) bool {
	if !q.Price.Contains(c.Price) {
		return false
	}
	return q.Quantity.Contains(c.Quantity())
}

// Repository defines cart storage operations. AddLine must apply its
// quantity and price mutation atomically for the targeted cart.
type Repository interface {
	Create(ctx context.Context) (*Cart, error)
	Get(ctx context.Context, id int64) (*Cart, error)
	List(ctx context.Context, q ListQuery) ([]Cart, error)
	AddLine(ctx context.Context, cartID int64, snap Snapshot) (*Cart, error)
}
