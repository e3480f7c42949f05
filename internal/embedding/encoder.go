// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package embedding maps free text to fixed-dimension dense vectors.
//
// Encoders are deterministic for a given model version: the same text
// always produces the same vector, so catalog embeddings computed at
// startup and query embeddings computed per request live in one space.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrDimensionMismatch is returned when an encoder produces a vector whose
// length differs from its declared dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Encoder converts text into a vector of Dimension() float32 values.
type Encoder interface {
	Encode(text string) ([]float32, error)
	Dimension() int
	ModelVersion() string
}

// EncodeBatch encodes texts in parallel, preserving input order.
// workers <= 0 uses runtime.NumCPU().
func EncodeBatch(ctx context.Context, enc Encoder, texts []string, workers int) ([][]float32, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([][]float32, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := enc.Encode(texts[i])
			if err != nil {
				return fmt.Errorf("encode row %d: %w", i, err)
			}
			if len(vec) != enc.Dimension() {
				return fmt.Errorf("%w: row %d has %d values, encoder declares %d",
					ErrDimensionMismatch, i, len(vec), enc.Dimension())
			}
			out[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
