// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package dataset

import (
	"context"
	"fmt"
)

// Source kinds accepted by NewSource.
const (
	KindCSV    = "csv"
	KindDuckDB = "duckdb"
)

// Source loads the three input tables.
type Source interface {
	// Load reads and validates all tables. Malformed input yields *DataError.
	Load(ctx context.Context) (*Tables, error)

	// Name identifies the source in logs.
	Name() string
}

// Paths locates the three input files.
type Paths struct {
	Users    string
	Products string
	Ratings  string
}

// NewSource returns the source for kind.
func NewSource(kind string, paths Paths) (Source, error) {
	switch kind {
	case KindCSV, "":
		return NewCSVSource(paths), nil
	case KindDuckDB:
		return NewDuckDBSource(paths), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", kind)
	}
}

// StaticSource serves tables that are already in memory.
type StaticSource struct {
	tables Tables
}

// NewStaticSource wraps tables. The slices are not copied.
func NewStaticSource(tables Tables) *StaticSource {
	return &StaticSource{tables: tables}
}

// Load validates and returns the wrapped tables.
func (s *StaticSource) Load(ctx context.Context) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := s.tables
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return "static"
}
