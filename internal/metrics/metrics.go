// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package metrics defines the Prometheus collectors for the recommendation engine.
//
// All collectors are registered on the default registry through promauto.
// Exposing them is left to the embedding process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request paths reported by RecordRequest.
const (
	PathCollaborative = "collaborative"
	PathSemantic      = "semantic"
	PathFallback      = "fallback" // unknown user routed to semantic search
)

var (
	// Request Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommerce_requests_total",
			Help: "Total number of recommendation requests by path and outcome",
		},
		[]string{"path", "status"}, // status: "ok", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommerce_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"path"},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommerce_results_returned",
			Help:    "Number of items returned per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// Initialization Metrics
	InitDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommerce_init_duration_seconds",
			Help: "Duration of the last engine initialization in seconds",
		},
	)

	InitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommerce_init_failures_total",
			Help: "Total number of failed engine initializations",
		},
	)

	Ready = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommerce_ready",
			Help: "Whether the engine finished initialization (1 = ready)",
		},
	)

	// Dataset Metrics
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommerce_dataset_rows",
			Help: "Number of rows loaded per dataset",
		},
		[]string{"dataset"}, // "users", "products", "ratings"
	)

	FeatureDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommerce_feature_dimensions",
			Help: "Length of the user feature vector",
		},
	)

	// Query Embedding Cache Metrics
	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommerce_query_cache_hits_total",
			Help: "Total number of query embedding cache hits",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommerce_query_cache_misses_total",
			Help: "Total number of query embedding cache misses",
		},
	)
)

// RecordRequest records one served request.
func RecordRequest(path string, duration time.Duration, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecommendRequests.WithLabelValues(path, status).Inc()
	RecommendDuration.WithLabelValues(path).Observe(duration.Seconds())
	if err == nil {
		RecommendResults.Observe(float64(results))
	}
}

// RecordInit records the outcome of an engine initialization.
func RecordInit(duration time.Duration, err error) {
	InitDuration.Set(duration.Seconds())
	if err != nil {
		InitFailures.Inc()
		Ready.Set(0)
		return
	}
	Ready.Set(1)
}

// UpdateDatasetSizes publishes the loaded dataset sizes.
func UpdateDatasetSizes(users, products, ratings, featureDims int) {
	DatasetRows.WithLabelValues("users").Set(float64(users))
	DatasetRows.WithLabelValues("products").Set(float64(products))
	DatasetRows.WithLabelValues("ratings").Set(float64(ratings))
	FeatureDimensions.Set(float64(featureDims))
}

// RecordQueryCache records a query embedding cache lookup.
func RecordQueryCache(hit bool) {
	if hit {
		QueryCacheHits.Inc()
		return
	}
	QueryCacheMisses.Inc()
}
