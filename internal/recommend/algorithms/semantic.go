// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package algorithms

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/recommerce/internal/cache"
	"github.com/tomtom215/recommerce/internal/embedding"
	"github.com/tomtom215/recommerce/internal/metrics"
	"github.com/tomtom215/recommerce/internal/recommend/storage"
	"github.com/tomtom215/recommerce/internal/vectorindex"
)

// SemanticConfig contains semantic search settings.
type SemanticConfig struct {
	// NumWorkers for parallel catalog encoding. <= 0 uses all CPUs.
	NumWorkers int

	// QueryCacheSize bounds the query embedding cache. 0 disables it.
	QueryCacheSize int

	// QueryCacheTTL expires cached query embeddings. <= 0 never expires.
	QueryCacheTTL time.Duration
}

// Hit is one semantic search result.
type Hit struct {
	Row       int // catalog row
	ProductID string
	Distance  float64 // squared Euclidean distance to the query
}

// SemanticSearch answers free-text queries by nearest-neighbour search
// over product name embeddings.
//
// Index row i holds the embedding of catalog row i. The index is built
// once and read-only afterwards, so Search is safe for concurrent use.
type SemanticSearch struct {
	encoder embedding.Encoder
	index   *vectorindex.FlatIndex
	catalog *storage.Catalog

	// queries caches query embeddings; nil when disabled
	queries *cache.LRUCache[[]float32]
}

// NewSemanticSearch embeds every product name and builds the index.
func NewSemanticSearch(ctx context.Context, cfg SemanticConfig, enc embedding.Encoder, catalog *storage.Catalog) (*SemanticSearch, error) {
	vectors, err := embedding.EncodeBatch(ctx, enc, catalog.Names(), resolveWorkers(cfg.NumWorkers))
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}

	index, err := vectorindex.NewFlatIndex(enc.Dimension())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := index.Add(vectors...); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	s := &SemanticSearch{
		encoder: enc,
		index:   index,
		catalog: catalog,
	}
	if cfg.QueryCacheSize > 0 {
		s.queries = cache.NewLRUCache[[]float32](cfg.QueryCacheSize, cfg.QueryCacheTTL)
	}
	return s, nil
}

// Len returns the number of indexed products.
func (s *SemanticSearch) Len() int { return s.index.Len() }

// Dimension returns the embedding dimension.
func (s *SemanticSearch) Dimension() int { return s.index.Dimension() }

// ModelVersion returns the encoder's model version.
func (s *SemanticSearch) ModelVersion() string { return s.encoder.ModelVersion() }

// Search returns up to topK products nearest to query, closest first.
// An empty query is valid. topK <= 0 returns an empty list.
func (s *SemanticSearch) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		return []Hit{}, nil
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	vec, err := s.embed(query)
	if err != nil {
		return nil, err
	}

	neighbors, err := s.index.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	hits := make([]Hit, len(neighbors))
	for i, n := range neighbors {
		hits[i] = Hit{
			Row:       n.Row,
			ProductID: s.catalog.At(n.Row).ID,
			Distance:  n.Distance,
		}
	}
	return hits, nil
}

// embed encodes query, consulting the cache when enabled.
func (s *SemanticSearch) embed(query string) ([]float32, error) {
	if s.queries != nil {
		if vec, ok := s.queries.Get(query); ok {
			metrics.RecordQueryCache(true)
			return vec, nil
		}
		metrics.RecordQueryCache(false)
	}

	vec, err := s.encoder.Encode(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	if s.queries != nil {
		s.queries.Add(query, vec)
	}
	return vec, nil
}
