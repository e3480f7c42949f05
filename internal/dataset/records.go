// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package dataset loads the users, products and ratings tables the
// recommendation engine is built from.
//
// Two sources are available behind the Source interface:
//
//   - CSVSource reads the files with encoding/csv
//   - DuckDBSource reads the same files through DuckDB's read_csv
//
// Both map columns by header name, ignore extra columns, and report
// malformed input as *DataError.
package dataset

import (
	"fmt"

	"github.com/tomtom215/recommerce/internal/validation"
)

// Dataset names used in errors and metrics.
const (
	DatasetUsers    = "users"
	DatasetProducts = "products"
	DatasetRatings  = "ratings"
)

// Required column names.
const (
	ColUserID    = "user_id"
	ColAge       = "age"
	ColGender    = "gender"
	ColLocation  = "location"
	ColInterests = "interests"
	ColProductID = "product_id"
	ColName      = "name"
	ColCategory  = "category"
	ColPrice     = "price"
	ColRating    = "rating"
)

// Product is a catalog item.
type Product struct {
	ID       string  `column:"product_id" validate:"notblank"`
	Name     string  // may be empty
	Category string
	Price    float64 `column:"price" validate:"gte=0"`
}

// UserProfile holds a user's demographic record.
// Interests is a comma-delimited tag list.
type UserProfile struct {
	UserID    string `column:"user_id" validate:"notblank"`
	Age       float64
	Gender    string
	Location  string
	Interests string
}

// Rating is one historical (user, product, rating) interaction.
type Rating struct {
	UserID    string `column:"user_id" validate:"notblank"`
	ProductID string `column:"product_id" validate:"notblank"`
	Rating    float64
}

// Tables is the full input of the engine, in file order.
type Tables struct {
	Users    []UserProfile
	Products []Product
	Ratings  []Rating
}

// Validate checks every record and rejects duplicate user and product ids.
// Rows in returned errors are 1-based positions within their table.
func (t *Tables) Validate() error {
	seenUsers := make(map[string]int, len(t.Users))
	for i := range t.Users {
		if err := validateRecord(DatasetUsers, i+1, &t.Users[i]); err != nil {
			return err
		}
		id := t.Users[i].UserID
		if first, dup := seenUsers[id]; dup {
			return &DataError{
				Dataset: DatasetUsers,
				Column:  ColUserID,
				Row:     i + 1,
				Err:     fmt.Errorf("%w: %q first seen at row %d", ErrDuplicateID, id, first),
			}
		}
		seenUsers[id] = i + 1
	}

	seenProducts := make(map[string]int, len(t.Products))
	for i := range t.Products {
		if err := validateRecord(DatasetProducts, i+1, &t.Products[i]); err != nil {
			return err
		}
		id := t.Products[i].ID
		if first, dup := seenProducts[id]; dup {
			return &DataError{
				Dataset: DatasetProducts,
				Column:  ColProductID,
				Row:     i + 1,
				Err:     fmt.Errorf("%w: %q first seen at row %d", ErrDuplicateID, id, first),
			}
		}
		seenProducts[id] = i + 1
	}

	for i := range t.Ratings {
		if err := validateRecord(DatasetRatings, i+1, &t.Ratings[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateRecord(dataset string, row int, rec interface{}) error {
	verr := validation.ValidateStruct(rec)
	if verr == nil {
		return nil
	}
	first := verr.Fields[0]
	return &DataError{
		Dataset: dataset,
		Column:  first.Field,
		Row:     row,
		Err:     fmt.Errorf("%w: %s", ErrInvalidValue, first.Message),
	}
}
