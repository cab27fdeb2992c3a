// Package memory implements the item and cart repositories as process-local
// stores. Each store owns a keyed map plus its identifier counter and guards
// both with a single RWMutex, so identifier assignment and map mutation are
// serialized per repository. All reads return copies.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/item"
)

var _ item.Repository = (*ItemStore)(nil)

// ItemStore is the in-memory item repository. Identifiers are gap-free and
// start at 0, so an item's position in creation order equals its id.
type ItemStore struct {
	mu     sync.RWMutex
	items  map[int64]*item.Item
	nextID int64
}

// NewItemStore creates an empty item store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[int64]*item.Item)}
}

// Create assigns the next identifier, stores an active item, and returns it.
func (s *ItemStore) Create(_ context.Context, name string, price decimal.Decimal) (*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	it := &item.Item{ID: id, Name: name, Price: price}
	s.items[id] = it

	cp := *it
	return &cp, nil
}

// Get returns the item regardless of its deletion state.
func (s *ItemStore) Get(_ context.Context, id int64) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}

	cp := *it
	return &cp, nil
}

// List takes the [offset, offset+limit) window over all stored ids in
// creation order, then applies the price and deleted predicates to that
// window. Entries filtered out of the window are not backfilled.
func (s *ItemStore) List(_ context.Context, q item.ListQuery) ([]item.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, hi := q.Page.Window(len(s.items))
	out := make([]item.Item, 0, hi-lo)
	for id := lo; id < hi; id++ {
		it := s.items[int64(id)]
		if q.Matches(*it) {
			out = append(out, *it)
		}
	}
	return out, nil
}

// Update replaces both name and price of an active item.
func (s *ItemStore) Update(_ context.Context, id int64, name string, price decimal.Decimal) (*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	if it.Deleted {
		return nil, item.ErrDeleted
	}

	it.Name = name
	it.Price = price

	cp := *it
	return &cp, nil
}

// Patch applies only the fields present in p to an active item.
func (s *ItemStore) Patch(_ context.Context, id int64, p item.Patch) (*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	if it.Deleted {
		return nil, item.ErrDeleted
	}

	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Price != nil {
		it.Price = *p.Price
	}

	cp := *it
	return &cp, nil
}

// Delete marks the item as deleted. Deleting an already-deleted item
// succeeds silently; the flag never transitions back.
func (s *ItemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return item.ErrNotFound
	}

	it.Deleted = true
	return nil
}

// Ping reports store reachability for readiness probes.
func (s *ItemStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nil
}
