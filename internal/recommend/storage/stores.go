// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package storage holds the immutable in-memory stores the engine serves from.
//
// # Stores
//
//   - Catalog: products by row position and by id
//   - Profiles: user demographic records by population position and by id
//   - Ratings: historical interactions grouped by user
//
// # Thread Safety
//
// Stores are built once and never modified afterwards, so all read
// methods are safe for concurrent use without locking. Slices returned
// by read methods must not be modified by callers.
//
// # Input
//
// Stores index tables that already passed dataset.Tables.Validate, which
// every dataset.Source runs before returning. Ids are therefore unique and
// are not checked again here.
package storage

import (
	"github.com/tomtom215/recommerce/internal/dataset"
)

// Stores bundles the three stores built from one set of tables.
type Stores struct {
	Catalog  *Catalog
	Profiles *Profiles
	Ratings  *Ratings
}

// New builds all stores from validated tables.
func New(tables *dataset.Tables) *Stores {
	return &Stores{
		Catalog:  NewCatalog(tables.Products),
		Profiles: NewProfiles(tables.Users),
		Ratings:  NewRatings(tables.Ratings),
	}
}

// ========== Catalog ==========

// Catalog is the product store. Row positions match the embedding index.
type Catalog struct {
	products []dataset.Product
	byID     map[string]int
}

// NewCatalog indexes products by id.
func NewCatalog(products []dataset.Product) *Catalog {
	byID := make(map[string]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}
	return &Catalog{products: products, byID: byID}
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// At returns the product at row.
func (c *Catalog) At(row int) dataset.Product { return c.products[row] }

// Row returns the row position of a product id.
func (c *Catalog) Row(id string) (int, bool) {
	row, ok := c.byID[id]
	return row, ok
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(id string) (dataset.Product, bool) {
	row, ok := c.byID[id]
	if !ok {
		return dataset.Product{}, false
	}
	return c.products[row], true
}

// Names returns product names in row order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.products))
	for i := range c.products {
		names[i] = c.products[i].Name
	}
	return names
}

// ========== Profiles ==========

// Profiles is the user profile store. Positions follow file order, which
// is the population order used for tie-breaking.
type Profiles struct {
	users []dataset.UserProfile
	byID  map[string]int
}

// NewProfiles indexes users by id.
func NewProfiles(users []dataset.UserProfile) *Profiles {
	byID := make(map[string]int, len(users))
	for i := range users {
		byID[users[i].UserID] = i
	}
	return &Profiles{users: users, byID: byID}
}

// Len returns the population size.
func (p *Profiles) Len() int { return len(p.users) }

// All returns every profile in population order.
func (p *Profiles) All() []dataset.UserProfile { return p.users }

// Index returns the population position of userID.
func (p *Profiles) Index(userID string) (int, bool) {
	i, ok := p.byID[userID]
	return i, ok
}

// Contains reports whether userID is a known user.
func (p *Profiles) Contains(userID string) bool {
	_, ok := p.byID[userID]
	return ok
}

// ========== Ratings ==========

// Ratings is the interaction store, grouped by user in file order.
type Ratings struct {
	count  int
	byUser map[string][]dataset.Rating
}

// NewRatings groups ratings by user id.
func NewRatings(ratings []dataset.Rating) *Ratings {
	byUser := make(map[string][]dataset.Rating)
	for _, r := range ratings {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	return &Ratings{count: len(ratings), byUser: byUser}
}

// Len returns the total number of ratings.
func (r *Ratings) Len() int { return r.count }

// ForUser returns the ratings of userID in file order.
func (r *Ratings) ForUser(userID string) []dataset.Rating {
	return r.byUser[userID]
}

// Users returns the number of distinct users with at least one rating.
func (r *Ratings) Users() int { return len(r.byUser) }
