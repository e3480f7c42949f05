// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package config provides layered configuration for Recommerce.
//
// Configuration is loaded in three layers, each overriding the previous one:
//
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH, config.yaml, /etc/recommerce/config.yaml)
//  3. Environment variables
//
// Sections:
//
//   - data: where users, products and ratings are read from (csv or duckdb)
//   - embedding: text encoder settings used by semantic search
//   - recommend: collaborative neighbourhood size, default result counts, query cache
//   - logging: zerolog level, format and caller info
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/recommerce/internal/validation"
)

// Supported data source kinds.
const (
	SourceCSV    = "csv"
	SourceDuckDB = "duckdb"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the three input tables.
//
// Environment Variables:
//   - DATA_SOURCE: csv or duckdb (default: csv)
//   - DATA_USERS_PATH: users table (default: data/users.csv)
//   - DATA_PRODUCTS_PATH: products table (default: data/products.csv)
//   - DATA_RATINGS_PATH: ratings table (default: data/ratings.csv)
type DataConfig struct {
	Source       string `koanf:"source" validate:"oneof=csv duckdb"`
	UsersPath    string `koanf:"users_path" validate:"notblank"`
	ProductsPath string `koanf:"products_path" validate:"notblank"`
	RatingsPath  string `koanf:"ratings_path" validate:"notblank"`
}

// EmbeddingConfig configures the text encoder.
//
// Environment Variables:
//   - EMBEDDING_DIMENSION: vector length (default: 384)
//   - EMBEDDING_MODEL_VERSION: encoder version tag (default: hashing-v1)
//   - EMBEDDING_NGRAM_WEIGHT: weight of character trigram features, 0 disables (default: 0.5)
//   - EMBEDDING_WORKERS: parallel encoders during index build, 0 = NumCPU (default: 0)
type EmbeddingConfig struct {
	Dimension    int     `koanf:"dimension" validate:"gte=8,lte=4096"`
	ModelVersion string  `koanf:"model_version" validate:"notblank"`
	NGramWeight  float64 `koanf:"ngram_weight" validate:"gte=0,lte=1"`
	Workers      int     `koanf:"workers" validate:"gte=0,lte=256"`
}

// RecommendConfig configures the recommendation engine.
//
// Environment Variables:
//   - RECOMMEND_NEIGHBORS: similar users considered per request (default: 10)
//   - RECOMMEND_DEFAULT_TOP_N: result count for GetRecommendations (default: 5)
//   - RECOMMEND_DEFAULT_TOP_K: result count for search when none is given (default: 5)
//   - RECOMMEND_QUERY_CACHE_SIZE: cached query embeddings, 0 disables (default: 1024)
//   - RECOMMEND_QUERY_CACHE_TTL: lifetime of a cached query embedding (default: 10m)
type RecommendConfig struct {
	Neighbors      int           `koanf:"neighbors" validate:"min=1,max=10000"`
	DefaultTopN    int           `koanf:"default_top_n" validate:"gte=0,lte=1000"`
	DefaultTopK    int           `koanf:"default_top_k" validate:"gte=0,lte=1000"`
	QueryCacheSize int           `koanf:"query_cache_size" validate:"gte=0"`
	QueryCacheTTL  time.Duration `koanf:"query_cache_ttl" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}
	return nil
}

// Load reads configuration using the layered koanf loader.
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
