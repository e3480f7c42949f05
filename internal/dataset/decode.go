// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// table is a raw string table as read by either source.
type table struct {
	dataset string
	header  []string
	rows    [][]string
}

// columns maps header names to positions and checks that every required
// column is present. The first occurrence of a repeated header wins.
func (t *table) columns(required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(t.header))
	for i, name := range t.header {
		name = strings.TrimSpace(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &DataError{Dataset: t.dataset, Column: col, Err: ErrMissingColumn}
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func (t *table) number(row, col int, name string) (float64, error) {
	raw := strings.TrimSpace(cell(t.rows[row], col))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DataError{
			Dataset: t.dataset,
			Column:  name,
			Row:     row + 1,
			Err:     fmt.Errorf("%w: %q", ErrInvalidNumber, raw),
		}
	}
	return v, nil
}

func decodeUsers(t *table) ([]UserProfile, error) {
	idx, err := t.columns(ColUserID, ColAge, ColGender, ColLocation, ColInterests)
	if err != nil {
		return nil, err
	}

	users := make([]UserProfile, 0, len(t.rows))
	for i, row := range t.rows {
		age, err := t.number(i, idx[ColAge], ColAge)
		if err != nil {
			return nil, err
		}
		users = append(users, UserProfile{
			UserID:    strings.TrimSpace(cell(row, idx[ColUserID])),
			Age:       age,
			Gender:    strings.TrimSpace(cell(row, idx[ColGender])),
			Location:  strings.TrimSpace(cell(row, idx[ColLocation])),
			Interests: cell(row, idx[ColInterests]),
		})
	}
	return users, nil
}

func decodeProducts(t *table) ([]Product, error) {
	idx, err := t.columns(ColProductID, ColName, ColCategory, ColPrice)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(t.rows))
	for i, row := range t.rows {
		price, err := t.number(i, idx[ColPrice], ColPrice)
		if err != nil {
			return nil, err
		}
		products = append(products, Product{
			ID:       strings.TrimSpace(cell(row, idx[ColProductID])),
			Name:     cell(row, idx[ColName]),
			Category: cell(row, idx[ColCategory]),
			Price:    price,
		})
	}
	return products, nil
}

func decodeRatings(t *table) ([]Rating, error) {
	idx, err := t.columns(ColUserID, ColProductID, ColRating)
	if err != nil {
		return nil, err
	}

	ratings := make([]Rating, 0, len(t.rows))
	for i, row := range t.rows {
		value, err := t.number(i, idx[ColRating], ColRating)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, Rating{
			UserID:    strings.TrimSpace(cell(row, idx[ColUserID])),
			ProductID: strings.TrimSpace(cell(row, idx[ColProductID])),
			Rating:    value,
		})
	}
	return ratings, nil
}

// decodeTables turns the three raw tables into validated records.
func decodeTables(users, products, ratings *table) (*Tables, error) {
	u, err := decodeUsers(users)
	if err != nil {
		return nil, err
	}
	p, err := decodeProducts(products)
	if err != nil {
		return nil, err
	}
	r, err := decodeRatings(ratings)
	if err != nil {
		return nil, err
	}

	tables := &Tables{Users: u, Products: p, Ratings: r}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}
