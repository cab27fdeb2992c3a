package memory

import (
	"context"
	"sync"

	"github.com/xenking/shop-api/internal/domain/cart"
)

var _ cart.Repository = (*CartStore)(nil)

// CartStore is the in-memory cart repository. Like ItemStore, it owns a
// gap-free identifier sequence starting at 0.
type CartStore struct {
	mu     sync.RWMutex
	carts  map[int64]*cart.Cart
	nextID int64
}

// NewCartStore creates an empty cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[int64]*cart.Cart)}
}

// Create assigns the next identifier and stores an empty cart.
func (s *CartStore) Create(_ context.Context) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	c := &cart.Cart{ID: id, Items: []cart.Line{}}
	s.carts[id] = c

	return copyCart(c), nil
}

// Get returns the cart under the given id.
func (s *CartStore) Get(_ context.Context, id int64) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return copyCart(c), nil
}

// List applies the same windowed-then-filtered pagination policy as the item
// store: window first over all carts in creation order, predicates second.
func (s *CartStore) List(_ context.Context, q cart.ListQuery) ([]cart.Cart, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, hi := q.Page.Window(len(s.carts))
	out := make([]cart.Cart, 0, hi-lo)
	for id := lo; id < hi; id++ {
		c := s.carts[int64(id)]
		if q.Matches(*c) {
			out = append(out, *copyCart(c))
		}
	}
	return out, nil
}

// AddLine increments the quantity of an existing line for the snapshot's
// item, or appends a fresh line with quantity 1. Either way the cart price
// accumulator grows by the snapshot's unit price. Quantity bump and price
// bump happen under one lock acquisition.
func (s *CartStore) AddLine(_ context.Context, cartID int64, snap cart.Snapshot) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return nil, cart.ErrNotFound
	}

	for i := range c.Items {
		if c.Items[i].ItemID == snap.ItemID && c.Items[i].Available {
			c.Items[i].Quantity++
			c.Price = c.Price.Add(snap.UnitPrice)
			return copyCart(c), nil
		}
	}

	c.Items = append(c.Items, cart.Line{
		ItemID:    snap.ItemID,
		ItemName:  snap.ItemName,
		Quantity:  1,
		Available: true,
	})
	c.Price = c.Price.Add(snap.UnitPrice)

	return copyCart(c), nil
}

// Ping reports store reachability for readiness probes.
func (s *CartStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nil
}

// copyCart clones the cart including its line slice so callers never share
// memory with the store.
func copyCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = make([]cart.Line, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
