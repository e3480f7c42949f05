// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Neighbors is the number of most similar users, self included,
	// whose ratings feed a collaborative recommendation.
	Neighbors int `json:"neighbors"`

	// DefaultTopN is the result count used by GetRecommendations.
	DefaultTopN int `json:"default_top_n"`

	// DefaultTopK is the result count suggested for plain searches.
	DefaultTopK int `json:"default_top_k"`

	// Workers bounds the goroutines used for similarity scans and
	// catalog encoding. 0 uses all CPUs.
	Workers int `json:"workers"`

	// QueryCacheSize is the number of query embeddings kept in memory.
	// 0 disables the cache.
	QueryCacheSize int `json:"query_cache_size"`

	// QueryCacheTTL expires cached query embeddings. 0 never expires.
	QueryCacheTTL time.Duration `json:"query_cache_ttl"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Neighbors:      10,
		DefaultTopN:    5,
		DefaultTopK:    5,
		Workers:        0,
		QueryCacheSize: 1024,
		QueryCacheTTL:  10 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.DefaultTopN < 0 {
		return fmt.Errorf("default_top_n must be non-negative, got %d", c.DefaultTopN)
	}
	if c.DefaultTopK < 0 {
		return fmt.Errorf("default_top_k must be non-negative, got %d", c.DefaultTopK)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("query_cache_size must be non-negative, got %d", c.QueryCacheSize)
	}
	if c.QueryCacheTTL < 0 {
		return fmt.Errorf("query_cache_ttl must be non-negative, got %v", c.QueryCacheTTL)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		QueryCacheTTL string `json:"query_cache_ttl"`
	}{
		Alias:         (*Alias)(c),
		QueryCacheTTL: c.QueryCacheTTL.String(),
	})
}
