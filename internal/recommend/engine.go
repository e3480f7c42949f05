// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recommerce/internal/dataset"
	"github.com/tomtom215/recommerce/internal/embedding"
	"github.com/tomtom215/recommerce/internal/logging"
	"github.com/tomtom215/recommerce/internal/metrics"
	"github.com/tomtom215/recommerce/internal/recommend/algorithms"
	"github.com/tomtom215/recommerce/internal/recommend/features"
	"github.com/tomtom215/recommerce/internal/recommend/storage"
)

// Engine serves collaborative and semantic recommendations over one
// immutable snapshot of the input data. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config  *Config
	logger  zerolog.Logger
	source  dataset.Source
	encoder embedding.Encoder

	// Initialization state. initErr is written once inside initOnce.
	initOnce sync.Once
	initErr  error

	// Built by initialize, read-only afterwards
	stores        *storage.Stores
	features      *features.Table
	collaborative *algorithms.Collaborative
	semantic      *algorithms.SemanticSearch

	statusMu sync.RWMutex
	status   Status
}

// NewEngine creates a new recommendation engine. No data is loaded until
// the first call that needs it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source dataset.Source, encoder embedding.Encoder, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("data source is required")
	}
	if encoder == nil {
		return nil, errors.New("text encoder is required")
	}

	return &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		source:  source,
		encoder: encoder,
		status: Status{
			Source:       source.Name(),
			ModelVersion: encoder.ModelVersion(),
		},
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// EnsureReady loads the data and builds all derived structures exactly
// once. It is idempotent and safe to call concurrently; callers arriving
// during the build wait for it. Cancellation of ctx does not abort a
// build that other callers may be waiting on.
func (e *Engine) EnsureReady(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.initialize(context.WithoutCancel(ctx))
	})

	if e.initErr != nil {
		return fmt.Errorf("%w: %w", ErrDataUnavailable, e.initErr)
	}
	return nil
}

// initialize runs the load-and-build pipeline.
func (e *Engine) initialize(ctx context.Context) error {
	start := time.Now()
	logger := e.logger.With().Str("source", e.source.Name()).Logger()
	logger.Info().Msg("initializing recommendation engine")

	err := e.build(ctx, logger)
	duration := time.Since(start)
	metrics.RecordInit(duration, err)

	e.statusMu.Lock()
	e.status.Initialized = true
	e.status.InitializedAt = time.Now()
	e.status.InitDurationMS = duration.Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
	} else {
		e.status.Ready = true
	}
	e.statusMu.Unlock()

	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("engine initialization failed")
		return err
	}

	logger.Info().
		Dur("duration", duration).
		Msg("recommendation engine ready")
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) build(ctx context.Context, logger zerolog.Logger) error {
	tables, err := e.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	logger.Info().
		Int("users", len(tables.Users)).
		Int("products", len(tables.Products)).
		Int("ratings", len(tables.Ratings)).
		Msg("data loaded")

	stores := storage.New(tables)

	table, err := features.Build(stores.Profiles.All())
	if err != nil {
		return fmt.Errorf("build user features: %w", err)
	}
	logger.Info().
		Int("dimension", table.Dimension()).
		Int("locations", len(table.Schema.Locations)).
		Int("genders", len(table.Schema.Genders)).
		Int("interests", len(table.Schema.Interests)).
		Msg("user features built")

	semantic, err := algorithms.NewSemanticSearch(ctx, algorithms.SemanticConfig{
		NumWorkers:     e.config.Workers,
		QueryCacheSize: e.config.QueryCacheSize,
		QueryCacheTTL:  e.config.QueryCacheTTL,
	}, e.encoder, stores.Catalog)
	if err != nil {
		return fmt.Errorf("build product index: %w", err)
	}
	logger.Info().
		Int("products", semantic.Len()).
		Int("dimension", semantic.Dimension()).
		Str("model_version", semantic.ModelVersion()).
		Msg("product index built")

	collaborative := algorithms.NewCollaborative(algorithms.CollaborativeConfig{
		Neighbors:  e.config.Neighbors,
		NumWorkers: e.config.Workers,
	}, table, stores.Ratings, stores.Catalog)

	e.stores = stores
	e.features = table
	e.semantic = semantic
	e.collaborative = collaborative

	metrics.UpdateDatasetSizes(stores.Profiles.Len(), stores.Catalog.Len(), stores.Ratings.Len(), table.Dimension())

	e.statusMu.Lock()
	e.status.UserCount = stores.Profiles.Len()
	e.status.ProductCount = stores.Catalog.Len()
	e.status.RatingCount = stores.Ratings.Len()
	e.status.FeatureDimension = table.Dimension()
	e.status.FeatureColumns = table.Schema.Columns()
	e.status.EmbeddingDimension = semantic.Dimension()
	e.statusMu.Unlock()

	return nil
}

// Recommend returns up to topN products for userID. Known users get
// collaborative recommendations; unknown users get the semantic search
// results for query. topN <= 0 returns an empty list.
func (e *Engine) Recommend(ctx context.Context, userID, query string, topN int) ([]Recommendation, error) {
	if err := e.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if topN <= 0 {
		return []Recommendation{}, nil
	}

	logger := e.requestLogger(ctx)

	if !e.collaborative.Knows(userID) {
		logger.Debug().
			Str("user_id", userID).
			Int("top_n", topN).
			Msg("unknown user, falling back to semantic search")
		return e.search(ctx, metrics.PathFallback, query, topN)
	}

	start := time.Now()
	scored, err := e.collaborative.Recommend(ctx, userID, topN)
	if err != nil {
		metrics.RecordRequest(metrics.PathCollaborative, time.Since(start), 0, err)
		return nil, fmt.Errorf("collaborative recommend: %w", err)
	}

	recs := make([]Recommendation, len(scored))
	for i, p := range scored {
		recs[i] = newRecommendation(e.stores.Catalog.At(p.Row))
	}

	metrics.RecordRequest(metrics.PathCollaborative, time.Since(start), len(recs), nil)
	logger.Debug().
		Str("user_id", userID).
		Int("top_n", topN).
		Int("returned", len(recs)).
		Msg("collaborative recommendation complete")

	return recs, nil
}

// Search returns up to topK products whose names are nearest to query,
// closest first. topK <= 0 returns an empty list.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]Recommendation, error) {
	if err := e.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []Recommendation{}, nil
	}
	return e.search(ctx, metrics.PathSemantic, query, topK)
}

// GetRecommendations is Recommend with the configured default count.
func (e *Engine) GetRecommendations(ctx context.Context, userID, query string) ([]Recommendation, error) {
	return e.Recommend(ctx, userID, query, e.config.DefaultTopN)
}

func (e *Engine) search(ctx context.Context, path, query string, topK int) ([]Recommendation, error) {
	start := time.Now()

	hits, err := e.semantic.Search(ctx, query, topK)
	if err != nil {
		metrics.RecordRequest(path, time.Since(start), 0, err)
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	recs := make([]Recommendation, len(hits))
	for i, h := range hits {
		recs[i] = newRecommendation(e.stores.Catalog.At(h.Row))
	}

	metrics.RecordRequest(path, time.Since(start), len(recs), nil)
	logger := e.requestLogger(ctx)
	logger.Debug().
		Str("path", path).
		Int("top_k", topK).
		Int("returned", len(recs)).
		Msg("semantic search complete")

	return recs, nil
}

// Status returns a snapshot of the initialization state.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	s := e.status
	if s.FeatureColumns != nil {
		s.FeatureColumns = append([]string(nil), s.FeatureColumns...)
	}
	return s
}

// requestLogger returns the engine logger tagged with the request ID in ctx.
func (e *Engine) requestLogger(ctx context.Context) zerolog.Logger {
	return logging.WithRequestID(ctx, e.logger)
}
