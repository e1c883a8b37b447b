// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package embedding

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// ErrShapeMismatch is returned when a table does not line up with the catalog.
var ErrShapeMismatch = errors.New("embedding table shape mismatch")

// Table holds one vector per catalog row. It is immutable after load.
type Table struct {
	dims    int
	vectors [][]float64
}

type tableFile struct {
	Dimensions int         `json:"dimensions"`
	Vectors    [][]float64 `json:"vectors"`
}

// NewTable validates vectors and builds a Table. Every vector must have
// dims entries and there must be exactly rows vectors.
func NewTable(dims int, vectors [][]float64, rows int) (*Table, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", ErrShapeMismatch, dims)
	}
	if len(vectors) != rows {
		return nil, fmt.Errorf("%w: %d vectors for %d catalog rows", ErrShapeMismatch, len(vectors), rows)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrShapeMismatch, i, len(v), dims)
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: vector %d has a non-finite component", ErrShapeMismatch, i)
			}
		}
	}
	return &Table{dims: dims, vectors: vectors}, nil
}

// LoadTable reads a JSON table file and checks it against the catalog size.
func LoadTable(path string, rows int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embedding table: %w", err)
	}
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode embedding table %s: %w", path, err)
	}
	return NewTable(f.Dimensions, f.Vectors, rows)
}

// Dimensions returns the vector width.
func (t *Table) Dimensions() int { return t.dims }

// Len returns the number of vectors.
func (t *Table) Len() int { return len(t.vectors) }

// Vector returns the vector of catalog row i. The slice must not be modified.
func (t *Table) Vector(i int) []float64 { return t.vectors[i] }

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
