// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package recommend implements the product recommendation engine facade.
//
// # Architecture
//
// The engine routes each request to one of two retrieval paths:
//
//   - Collaborative: known users get products rated by their most similar
//     users, where similarity is cosine similarity of demographic features
//   - Semantic: unknown users get products whose names are nearest to the
//     free-text query in embedding space
//
// An unknown user is not an error. Recommend for an unknown user returns
// exactly what Search returns for the same query and count.
//
// # Initialization
//
// Data is loaded and all derived structures (feature matrix, product
// embeddings, vector index) are built exactly once, lazily, on the first
// call that needs them. Concurrent first callers block until the single
// build finishes. When the build fails, every later call fails fast with
// an error matching both ErrDataUnavailable and the original cause; the
// engine never retries.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), source, encoder, logger)
//	if err != nil {
//	    return err
//	}
//
//	recs, err := engine.GetRecommendations(ctx, "u42", "winter jacket")
//
// # Thread Safety
//
// The engine is safe for concurrent use. After initialization all state is
// read-only, so requests run in parallel without locking.
package recommend
