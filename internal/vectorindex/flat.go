// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package vectorindex provides exact nearest-neighbor search over dense vectors.
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wizenheimer/comet"
)

// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Neighbor is one search hit: the row the vector was added at and its
// squared Euclidean distance to the query.
type Neighbor struct {
	Row      int
	Distance float64
}

// FlatIndex is an exhaustive squared-L2 index backed by comet's flat index.
// Rows are numbered in insertion order starting at 0 and double as comet
// node IDs.
type FlatIndex struct {
	mu   sync.RWMutex
	dim  int
	flat *comet.FlatIndex
	n    int
}

// NewFlatIndex creates an empty index for vectors of length dim.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	flat, err := comet.NewFlatIndex(dim, comet.L2Squared)
	if err != nil {
		return nil, fmt.Errorf("comet flat index: %w", err)
	}
	return &FlatIndex{dim: dim, flat: flat}, nil
}

// Dimension returns the vector length the index accepts.
func (x *FlatIndex) Dimension() int { return x.dim }

// Len returns the number of stored vectors.
func (x *FlatIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.n
}

// Add appends vectors. Lengths are checked up front, so a mismatch adds none.
// Vectors are copied; callers may reuse their slices.
func (x *FlatIndex) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("%w: vector %d has %d values, index expects %d", ErrDimensionMismatch, i, len(v), x.dim)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, v := range vectors {
		node := comet.NewVectorNodeWithID(uint32(x.n), append([]float32(nil), v...))
		if err := x.flat.Add(*node); err != nil {
			return fmt.Errorf("add row %d: %w", x.n, err)
		}
		x.n++
	}
	return nil
}

// Search returns up to k nearest rows ordered by ascending distance.
// Equal distances are ordered by row. k <= 0 returns an empty result.
func (x *FlatIndex) Search(query []float32, k int) ([]Neighbor, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d values, index expects %d", ErrDimensionMismatch, len(query), x.dim)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || x.n == 0 {
		return []Neighbor{}, nil
	}

	// comet does not order equal scores, so take every row and rank here.
	results, err := x.flat.NewSearch().
		WithQuery(query).
		WithK(x.n).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("comet search: %w", err)
	}

	all := make([]Neighbor, len(results))
	for i, r := range results {
		all[i] = Neighbor{Row: int(r.GetId()), Distance: float64(r.GetScore())}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Row < all[j].Row
	})

	if k > len(all) {
		k = len(all)
	}
	return all[:k:k], nil
}
