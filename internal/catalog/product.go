// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package catalog

import "strings"

// Product is one catalog row.
type Product struct {
	ID          string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Category    string  `json:"category,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// Text is the searchable text of the product: name and description.
func (p *Product) Text() string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + " " + p.Description
}

// Matches reports whether query occurs case-insensitively in the name or
// description. An empty query matches every product.
func (p *Product) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
