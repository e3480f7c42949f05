// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package features derives the numeric user feature matrix from profiles.
//
// Each user becomes one row laid out as
//
//	[location_encoded, age_scaled, gender_<g>..., <interest>...]
//
// where
//
//   - location_encoded numbers distinct locations in first-seen order
//   - age_scaled is min-max scaled over the population (0 when all ages are equal)
//   - gender_<g> is a one-hot column per distinct non-empty gender, sorted
//   - <interest> is a multi-hot column per distinct comma-separated tag, sorted
//
// The matrix is a pure function of the population: the same users in the
// same order always produce the same table.
package features

import (
	"sort"
	"strings"

	"github.com/tomtom215/recommerce/internal/dataset"
)

// Fixed column names.
const (
	ColumnUserID          = "user_id"
	ColumnLocationEncoded = "location_encoded"
	ColumnAgeScaled       = "age_scaled"
	GenderColumnPrefix    = "gender_"
)

// Schema describes the categorical layout of the feature columns.
type Schema struct {
	Locations []string `json:"locations"` // index is the location code
	Genders   []string `json:"genders"`
	Interests []string `json:"interests"`
}

// Columns returns the column names of a feature row, user_id first.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, 3+len(s.Genders)+len(s.Interests))
	cols = append(cols, ColumnUserID, ColumnLocationEncoded, ColumnAgeScaled)
	for _, g := range s.Genders {
		cols = append(cols, GenderColumnPrefix+g)
	}
	cols = append(cols, s.Interests...)
	return cols
}

// Dimension returns the length of a feature vector (user_id excluded).
func (s *Schema) Dimension() int {
	return 2 + len(s.Genders) + len(s.Interests)
}

// UserFeatureVector is one user's row of the feature matrix.
type UserFeatureVector struct {
	UserID          string
	LocationEncoded int
	AgeScaled       float64
	Gender          []float64 // one-hot in Schema.Genders order
	Interests       []float64 // multi-hot in Schema.Interests order
}

// Vector returns the numeric row used for similarity.
func (v *UserFeatureVector) Vector() []float64 {
	out := make([]float64, 0, 2+len(v.Gender)+len(v.Interests))
	out = append(out, float64(v.LocationEncoded), v.AgeScaled)
	out = append(out, v.Gender...)
	out = append(out, v.Interests...)
	return out
}

// Table is the built feature matrix. It is read-only after Build.
type Table struct {
	Schema Schema
	Rows   []UserFeatureVector

	vectors [][]float64
	index   map[string]int
}

// Build derives the feature table for a non-empty user population.
// User ids must be unique, as guaranteed by dataset.Tables.Validate.
func Build(users []dataset.UserProfile) (*Table, error) {
	if len(users) == 0 {
		return nil, &dataset.DataError{Dataset: dataset.DatasetUsers, Err: dataset.ErrEmptyDataset}
	}

	schema := buildSchema(users)
	locationCode := indexOf(schema.Locations)
	genderCol := indexOf(schema.Genders)
	interestCol := indexOf(schema.Interests)

	minAge, maxAge := ageRange(users)
	ageRangeWidth := maxAge - minAge

	t := &Table{
		Schema:  schema,
		Rows:    make([]UserFeatureVector, len(users)),
		vectors: make([][]float64, len(users)),
		index:   make(map[string]int, len(users)),
	}

	for i := range users {
		u := &users[i]
		row := UserFeatureVector{
			UserID:          u.UserID,
			LocationEncoded: locationCode[u.Location],
			Gender:          make([]float64, len(schema.Genders)),
			Interests:       make([]float64, len(schema.Interests)),
		}
		if ageRangeWidth > 0 {
			row.AgeScaled = (u.Age - minAge) / ageRangeWidth
		}
		if u.Gender != "" {
			row.Gender[genderCol[u.Gender]] = 1
		}
		for _, tag := range splitInterests(u.Interests) {
			row.Interests[interestCol[tag]] = 1
		}

		t.Rows[i] = row
		t.vectors[i] = row.Vector()
		t.index[u.UserID] = i
	}

	return t, nil
}

// Len returns the number of users.
func (t *Table) Len() int { return len(t.Rows) }

// Dimension returns the feature vector length.
func (t *Table) Dimension() int { return t.Schema.Dimension() }

// Lookup returns the population position of userID.
func (t *Table) Lookup(userID string) (int, bool) {
	i, ok := t.index[userID]
	return i, ok
}

// Vector returns the feature vector at population position i.
// The returned slice must not be modified.
func (t *Table) Vector(i int) []float64 { return t.vectors[i] }

// buildSchema collects the categorical vocabularies.
func buildSchema(users []dataset.UserProfile) Schema {
	var s Schema
	seenLoc := make(map[string]struct{})
	genders := make(map[string]struct{})
	interests := make(map[string]struct{})

	for i := range users {
		u := &users[i]
		if _, ok := seenLoc[u.Location]; !ok {
			seenLoc[u.Location] = struct{}{}
			s.Locations = append(s.Locations, u.Location)
		}
		if u.Gender != "" {
			genders[u.Gender] = struct{}{}
		}
		for _, tag := range splitInterests(u.Interests) {
			interests[tag] = struct{}{}
		}
	}

	s.Genders = sortedKeys(genders)
	s.Interests = sortedKeys(interests)
	return s
}

// splitInterests splits a comma-delimited tag list, trimming blanks.
// Repeated tags are returned once.
func splitInterests(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		tags = append(tags, p)
	}
	return tags
}

func ageRange(users []dataset.UserProfile) (minAge, maxAge float64) {
	minAge, maxAge = users[0].Age, users[0].Age
	for i := 1; i < len(users); i++ {
		if users[i].Age < minAge {
			minAge = users[i].Age
		}
		if users[i].Age > maxAge {
			maxAge = users[i].Age
		}
	}
	return minAge, maxAge
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
