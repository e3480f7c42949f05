// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVSource reads comma-separated files with a header row.
type CSVSource struct {
	paths Paths
}

// NewCSVSource creates a CSV source for paths.
func NewCSVSource(paths Paths) *CSVSource {
	return &CSVSource{paths: paths}
}

// Name implements Source.
func (s *CSVSource) Name() string {
	return KindCSV
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (*Tables, error) {
	users, err := readCSVTable(ctx, DatasetUsers, s.paths.Users)
	if err != nil {
		return nil, err
	}
	products, err := readCSVTable(ctx, DatasetProducts, s.paths.Products)
	if err != nil {
		return nil, err
	}
	ratings, err := readCSVTable(ctx, DatasetRatings, s.paths.Ratings)
	if err != nil {
		return nil, err
	}
	return decodeTables(users, products, ratings)
}

func readCSVTable(ctx context.Context, dataset, path string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer closeQuietly(f)

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("%w: %s has no header row", ErrMissingColumn, path)}
	}
	if err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("read header of %s: %w", path, err)}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &table{dataset: dataset, header: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataError{Dataset: dataset, Row: len(t.rows) + 1, Err: err}
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}
