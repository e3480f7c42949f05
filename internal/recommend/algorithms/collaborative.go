// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/recommerce/internal/recommend/features"
	"github.com/tomtom215/recommerce/internal/recommend/storage"
)

// ErrUnknownUser is returned when a user is not part of the population.
// The engine checks Knows before calling Recommend, so callers of the
// engine never see it.
var ErrUnknownUser = errors.New("unknown user")

// DefaultNeighbors is the neighbourhood size used when none is configured.
const DefaultNeighbors = 10

// CollaborativeConfig contains user-based collaborative filtering settings.
type CollaborativeConfig struct {
	// Neighbors is the number of most similar users (self included)
	// whose ratings are aggregated.
	Neighbors int

	// NumWorkers for parallel similarity computation. <= 0 uses all CPUs.
	NumWorkers int
}

// DefaultCollaborativeConfig returns sensible defaults.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		Neighbors:  DefaultNeighbors,
		NumWorkers: 0,
	}
}

// Neighbor is one member of a user's neighbourhood.
type Neighbor struct {
	UserID     string
	Position   int // population position
	Similarity float64
}

// ScoredProduct is a catalog product with its aggregated weighted rating.
type ScoredProduct struct {
	Row       int // catalog row
	ProductID string
	Score     float64
}

// Collaborative implements user-based collaborative filtering over the
// demographic feature matrix.
//
// Algorithm:
//  1. Cosine similarity between the target user and every user, self included
//  2. Keep the top Neighbors users by similarity, ties in population order
//  3. Sum rating * similarity per product over the neighbours' ratings
//  4. Rank by summed score descending, ties by product id ascending
//
// All state is read-only after construction and safe for concurrent use.
type Collaborative struct {
	config   CollaborativeConfig
	features *features.Table
	ratings  *storage.Ratings
	catalog  *storage.Catalog

	// norms caches the Euclidean norm of every feature vector
	norms []float64
}

// NewCollaborative creates the recommender over a built feature table.
func NewCollaborative(cfg CollaborativeConfig, table *features.Table, ratings *storage.Ratings, catalog *storage.Catalog) *Collaborative {
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = DefaultNeighbors
	}
	cfg.NumWorkers = resolveWorkers(cfg.NumWorkers)

	norms := make([]float64, table.Len())
	for i := range norms {
		norms[i] = norm(table.Vector(i))
	}

	return &Collaborative{
		config:   cfg,
		features: table,
		ratings:  ratings,
		catalog:  catalog,
		norms:    norms,
	}
}

// Knows reports whether userID is in the population.
func (c *Collaborative) Knows(userID string) bool {
	_, ok := c.features.Lookup(userID)
	return ok
}

// Neighbors returns the most similar users to userID, most similar first.
func (c *Collaborative) Neighbors(ctx context.Context, userID string) ([]Neighbor, error) {
	target, ok := c.features.Lookup(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}

	sims, err := c.similarities(ctx, target)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(sims))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sims[order[i]] > sims[order[j]]
	})

	k := c.config.Neighbors
	if k > len(order) {
		k = len(order)
	}

	neighbors := make([]Neighbor, k)
	for i := 0; i < k; i++ {
		pos := order[i]
		neighbors[i] = Neighbor{
			UserID:     c.features.Rows[pos].UserID,
			Position:   pos,
			Similarity: sims[pos],
		}
	}
	return neighbors, nil
}

// similarities computes the cosine similarity of target to every user.
func (c *Collaborative) similarities(ctx context.Context, target int) ([]float64, error) {
	n := c.features.Len()
	sims := make([]float64, n)
	if n == 0 {
		return sims, nil
	}
	targetVec := c.features.Vector(target)
	targetNorm := c.norms[target]

	workers := c.config.NumWorkers
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				if ContextCancelled(ctx) {
					return
				}
				sims[i] = cosineWithNorms(targetVec, c.features.Vector(i), targetNorm, c.norms[i])
			}
		}(start, end)
	}

	wg.Wait()

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	return sims, nil
}

// Recommend returns up to topN products ranked by neighbourhood-weighted
// rating. A neighbourhood without ratings yields an empty list.
func (c *Collaborative) Recommend(ctx context.Context, userID string, topN int) ([]ScoredProduct, error) {
	if topN <= 0 {
		return []ScoredProduct{}, nil
	}

	neighbors, err := c.Neighbors(ctx, userID)
	if err != nil {
		return nil, err
	}

	return aggregate(neighbors, c.ratings, c.catalog, topN), nil
}

// aggregate sums rating * similarity per product over the neighbours'
// ratings and returns the topN products. Products missing from the
// catalog are skipped.
func aggregate(neighbors []Neighbor, ratings *storage.Ratings, catalog *storage.Catalog, topN int) []ScoredProduct {
	scores := make(map[string]int)
	ranked := make([]ScoredProduct, 0)

	for _, n := range neighbors {
		for _, r := range ratings.ForUser(n.UserID) {
			row, ok := catalog.Row(r.ProductID)
			if !ok {
				continue
			}

			idx, seen := scores[r.ProductID]
			if !seen {
				idx = len(ranked)
				scores[r.ProductID] = idx
				ranked = append(ranked, ScoredProduct{Row: row, ProductID: r.ProductID})
			}
			ranked[idx].Score += r.Rating * n.Similarity
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
