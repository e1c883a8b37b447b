// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package catalog

// Store is an immutable, id-indexed product catalog.
type Store struct {
	products []Product
	index    map[string]int
}

// NewStore builds a Store from products in catalog order. When an id
// repeats, the first row wins for lookups; later duplicates stay in All.
func NewStore(products []Product) *Store {
	s := &Store{
		products: make([]Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(s.products, products)
	for i := range s.products {
		if _, dup := s.index[s.products[i].ID]; !dup {
			s.index[s.products[i].ID] = i
		}
	}
	return s
}

// Get returns the product with the given id.
func (s *Store) Get(id string) (Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Index returns the catalog row of the product with the given id.
func (s *Store) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// At returns the product at row i. It panics if i is out of range.
func (s *Store) At(i int) Product {
	return s.products[i]
}

// All returns a copy of every product in catalog order.
func (s *Store) All() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.products)
}
