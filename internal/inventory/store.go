package inventory

import (
	"slices"
	"strings"
	"sync"
)

// DefaultLowStockThreshold is the quantity below which an item counts as low stock.
const DefaultLowStockThreshold = 5

// Store keeps the ordered item sequence in memory.
// Order is insertion order. Duplicate IDs are allowed; lookups by ID take the first match.
type Store struct {
	mu    sync.RWMutex
	items []Item
}

// NewStore creates a store seeded with a copy of items.
func NewStore(items []Item) *Store {
	return &Store{
		items: slices.Clone(items),
	}
}

// List returns a copy of all items in their current order.
// Returns an empty slice when the store is empty.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Item, len(s.items))
	copy(list, s.items)
	return list
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Add appends a new item at the end of the sequence and returns it.
func (s *Store) Add(id, name string, quantity int, price float64) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := NewItem(id, name, quantity, price)
	s.items = append(s.items, item)
	return item
}

// Update sets quantity and price on the first item with the given ID.
// ID and name are left untouched. Returns false when no item matches.
func (s *Store) Update(id string, quantity int, price float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.items[i].Price = price
			return true
		}
	}
	return false
}

// Contains reports whether any item has the given ID.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.ContainsFunc(s.items, func(item Item) bool {
		return item.ID == id
	})
}

// Remove deletes every item with the given ID and returns how many were removed.
func (s *Store) Remove(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(item Item) bool {
		return item.ID == id
	})
	return before - len(s.items)
}

// Find returns the first item whose ID equals query or whose name equals query ignoring case.
func (s *Store) Find(query string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == query || strings.EqualFold(item.Name, query) {
			return item, true
		}
	}
	return Item{}, false
}

// LowStock returns the items with quantity strictly below threshold, in store order.
func (s *Store) LowStock(threshold int) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]Item, 0)
	for _, item := range s.items {
		if item.Quantity < threshold {
			low = append(low, item)
		}
	}
	return low
}
