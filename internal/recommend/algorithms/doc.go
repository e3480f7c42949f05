// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package algorithms implements the two retrieval paths of the engine.
//
// # Collaborative
//
// User-based collaborative filtering over demographic features rather than
// rating vectors: a user's neighbourhood is found by cosine similarity of
// feature rows, and the neighbours' ratings are aggregated weighted by
// similarity. See Collaborative.
//
// # Semantic
//
// Free-text product search: product names are embedded once into an
// exact L2 index and queries are answered by nearest-neighbour lookup.
// See SemanticSearch.
//
// # Thread Safety
//
// Both recommenders are immutable after construction and may be shared
// across goroutines. Collaborative parallelizes the similarity scan of a
// single request across NumWorkers goroutines.
//
// # Usage Example
//
//	cf := algorithms.NewCollaborative(algorithms.DefaultCollaborativeConfig(), table, stores.Ratings, stores.Catalog)
//	products, err := cf.Recommend(ctx, "u42", 5)
//
//	ss, err := algorithms.NewSemanticSearch(ctx, algorithms.SemanticConfig{}, encoder, stores.Catalog)
//	hits, err := ss.Search(ctx, "winter jacket", 5)
package algorithms
