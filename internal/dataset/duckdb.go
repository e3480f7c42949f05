// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// DuckDBSource reads the input files through an in-memory DuckDB instance.
// Every column is read as VARCHAR so numeric parsing matches CSVSource.
type DuckDBSource struct {
	paths Paths
	dsn   string
}

// NewDuckDBSource creates a DuckDB-backed source for paths.
func NewDuckDBSource(paths Paths) *DuckDBSource {
	return &DuckDBSource{
		paths: paths,
		dsn:   ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false",
	}
}

// Name implements Source.
func (s *DuckDBSource) Name() string {
	return KindDuckDB
}

// Load implements Source.
func (s *DuckDBSource) Load(ctx context.Context) (*Tables, error) {
	db, err := sql.Open("duckdb", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer closeQuietly(db)

	users, err := readDuckDBTable(ctx, db, DatasetUsers, s.paths.Users)
	if err != nil {
		return nil, err
	}
	products, err := readDuckDBTable(ctx, db, DatasetProducts, s.paths.Products)
	if err != nil {
		return nil, err
	}
	ratings, err := readDuckDBTable(ctx, db, DatasetRatings, s.paths.Ratings)
	if err != nil {
		return nil, err
	}
	return decodeTables(users, products, ratings)
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func readDuckDBTable(ctx context.Context, db *sql.DB, dataset, path string) (*table, error) {
	// read_csv errors are opaque about missing files; check first.
	if _, err := os.Stat(path); err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("open %s: %w", path, err)}
	}

	query := fmt.Sprintf(
		"SELECT * FROM read_csv(%s, header = true, all_varchar = true, delim = ',', quote = '\"')",
		quoteLiteral(path),
	)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("read_csv %s: %w", path, err)}
	}
	defer closeQuietly(rows)

	header, err := rows.Columns()
	if err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("columns of %s: %w", path, err)}
	}

	t := &table{dataset: dataset, header: header}
	values := make([]sql.NullString, len(header))
	dest := make([]interface{}, len(header))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, &DataError{Dataset: dataset, Row: len(t.rows) + 1, Err: err}
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = v.String // NULL reads as ""
		}
		t.rows = append(t.rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataError{Dataset: dataset, Err: fmt.Errorf("read_csv %s: %w", path, err)}
	}
	return t, nil
}
