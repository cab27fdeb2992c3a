package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/domain/item"
)

// ErrCartOrItemNotFound collapses both lookup failures of the add-item
// operation into one error, as the transport reports them with a single
// unprocessable-entity response rather than distinguishing which id was bad.
var ErrCartOrItemNotFound = errors.New("cart or item not found")

// Service merges a catalog lookup with a cart mutation. It is the one
// cross-entity operation in the store.
type Service struct {
	carts Repository
	items item.Repository
}

// NewService creates a cart Service backed by the given repositories.
func NewService(carts Repository, items item.Repository) *Service {
	return &Service{carts: carts, items: items}
}

// AddItem adds one unit of the item to the cart. A repeated add for the same
// item increments the existing line's quantity instead of appending a new
// line. The cart price grows by the item's price at call time (snapshot
// pricing). Soft-deleted items remain addable.
func (s *Service) AddItem(ctx context.Context, cartID, itemID int64) (*Cart, error) {
	it, err := s.items.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, ErrCartOrItemNotFound
		}
		return nil, errors.Wrap(err, "get item")
	}

	c, err := s.carts.AddLine(ctx, cartID, Snapshot{
		ItemID:    it.ID,
		ItemName:  it.Name,
		UnitPrice: it.Price,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCartOrItemNotFound
		}
		return nil, errors.Wrap(err, "add line")
	}

	return c, nil
}
