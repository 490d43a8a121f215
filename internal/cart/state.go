package cart

import (
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
)

// ErrEmptyProductID is returned when a mutation targets a blank product id.
var ErrEmptyProductID = pkgerrors.Validation("product id is required")

// State is a shopper's cart: product id -> quantity. Every stored quantity is at least 1.
// A State is owned by a single session; it is safe for concurrent use.
type State struct {
	mu    sync.RWMutex
	items map[string]int
}

// NewState seeds a cart from persisted items. Non-positive quantities and blank ids are dropped.
func NewState(items map[string]int) *State {
	s := &State{items: make(map[string]int, len(items))}
	for id, qty := range items {
		id = strings.TrimSpace(id)
		if id == "" || qty <= 0 {
			continue
		}
		s.items[id] = qty
	}
	return s
}

// Add inserts the product with quantity 1 or increments an existing line.
func (s *State) Add(productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrEmptyProductID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[productID]++
	return nil
}

// Remove decrements the product by one, dropping the key when it reaches zero.
// Removing an absent product is a no-op.
func (s *State) Remove(productID string) {
	productID = strings.TrimSpace(productID)
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.items[productID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(s.items, productID)
		return
	}
	s.items[productID] = qty - 1
}

// Delete drops the product regardless of quantity.
func (s *State) Delete(productID string) {
	productID = strings.TrimSpace(productID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, productID)
}

// Clear empties the cart.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]int)
}

// Snapshot returns a copy of the current items. Mutating it does not affect the State.
func (s *State) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.items))
	for id, qty := range s.items {
		out[id] = qty
	}
	return out
}

// Total is the number of units in the cart.
func (s *State) Total() int {
	return Total(s.Snapshot())
}

// Total sums the quantities of a cart snapshot.
func Total(items map[string]int) int {
	total := 0
	for _, qty := range items {
		total += qty
	}
	return total
}
