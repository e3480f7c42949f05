// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package storage

import (
	"reflect"
	"testing"

	"github.com/tomtom215/recommerce/internal/dataset"
)

func testTables() *dataset.Tables {
	return &dataset.Tables{
		Users: []dataset.UserProfile{
			{UserID: "u1", Age: 20, Location: "Berlin"},
			{UserID: "u2", Age: 30, Location: "Paris"},
		},
		Products: []dataset.Product{
			{ID: "p1", Name: "Red Shoes", Category: "Footwear", Price: 59.99},
			{ID: "p2", Name: "Blue Shoes", Category: "Footwear", Price: 49.5},
			{ID: "p3", Name: "", Category: "Misc", Price: 0},
		},
		Ratings: []dataset.Rating{
			{UserID: "u1", ProductID: "p1", Rating: 5},
			{UserID: "u2", ProductID: "p2", Rating: 3},
			{UserID: "u1", ProductID: "p3", Rating: 2},
			{UserID: "ghost", ProductID: "p9", Rating: 1},
		},
	}
}

func TestNew(t *testing.T) {
	stores := New(testTables())

	if stores.Catalog.Len() != 3 {
		t.Errorf("Catalog.Len() = %d, want 3", stores.Catalog.Len())
	}
	if stores.Profiles.Len() != 2 {
		t.Errorf("Profiles.Len() = %d, want 2", stores.Profiles.Len())
	}
	if stores.Ratings.Len() != 4 {
		t.Errorf("Ratings.Len() = %d, want 4", stores.Ratings.Len())
	}
}

func TestCatalog(t *testing.T) {
	stores := New(testTables())
	c := stores.Catalog

	row, ok := c.Row("p2")
	if !ok || row != 1 {
		t.Errorf("Row(p2) = %d, %v; want 1, true", row, ok)
	}
	if _, ok := c.Row("p9"); ok {
		t.Error("Row(p9) should not be found")
	}

	p, ok := c.Lookup("p1")
	if !ok || p.Name != "Red Shoes" || p.Price != 59.99 {
		t.Errorf("Lookup(p1) = %+v, %v", p, ok)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Error("Lookup(nope) should not be found")
	}

	if got := c.At(2); got.ID != "p3" {
		t.Errorf("At(2).ID = %q, want p3", got.ID)
	}

	want := []string{"Red Shoes", "Blue Shoes", ""}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestProfiles(t *testing.T) {
	stores := New(testTables())
	p := stores.Profiles

	if i, ok := p.Index("u2"); !ok || i != 1 {
		t.Errorf("Index(u2) = %d, %v; want 1, true", i, ok)
	}
	if !p.Contains("u1") {
		t.Error("Contains(u1) = false")
	}
	if p.Contains("u3") {
		t.Error("Contains(u3) = true")
	}
	if len(p.All()) != 2 {
		t.Errorf("len(All()) = %d, want 2", len(p.All()))
	}
}

func TestRatings(t *testing.T) {
	stores := New(testTables())
	r := stores.Ratings

	got := r.ForUser("u1")
	if len(got) != 2 || got[0].ProductID != "p1" || got[1].ProductID != "p3" {
		t.Errorf("ForUser(u1) = %+v, want p1 then p3", got)
	}
	if len(r.ForUser("u9")) != 0 {
		t.Error("ForUser(u9) should be empty")
	}
	if r.Users() != 3 {
		t.Errorf("Users() = %d, want 3", r.Users())
	}
}
