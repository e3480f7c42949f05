// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package recommend

import (
	"errors"
	"time"

	"github.com/tomtom215/recommerce/internal/dataset"
)

// ErrDataUnavailable is returned by every call once initialization has
// failed. The returned error also wraps the underlying cause.
var ErrDataUnavailable = errors.New("recommendation data unavailable")

// Recommendation is one product returned to callers.
type Recommendation struct {
	// Name is the product display name.
	Name string `json:"name"`

	// Category is the product category.
	Category string `json:"category"`

	// Price is the product price.
	Price float64 `json:"price"`
}

// newRecommendation projects a catalog product to the outbound record.
func newRecommendation(p dataset.Product) Recommendation {
	return Recommendation{
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
	}
}

// Status represents the current initialization state.
type Status struct {
	// Ready indicates the engine has been initialized successfully.
	Ready bool `json:"ready"`

	// Initialized indicates initialization has been attempted.
	Initialized bool `json:"initialized"`

	// LastError contains the initialization error, if any.
	LastError string `json:"last_error,omitempty"`

	// InitializedAt is when initialization finished.
	InitializedAt time.Time `json:"initialized_at,omitempty"`

	// InitDurationMS is how long initialization took.
	InitDurationMS int64 `json:"init_duration_ms"`

	// Source names the data source the engine loads from.
	Source string `json:"source"`

	// UserCount is the number of user profiles.
	UserCount int `json:"user_count"`

	// ProductCount is the number of catalog products.
	ProductCount int `json:"product_count"`

	// RatingCount is the number of historical ratings.
	RatingCount int `json:"rating_count"`

	// FeatureDimension is the length of a user feature vector.
	FeatureDimension int `json:"feature_dimension"`

	// FeatureColumns lists the feature matrix columns in order.
	FeatureColumns []string `json:"feature_columns,omitempty"`

	// EmbeddingDimension is the product embedding length.
	EmbeddingDimension int `json:"embedding_dimension"`

	// ModelVersion identifies the text encoder.
	ModelVersion string `json:"model_version"`
}
