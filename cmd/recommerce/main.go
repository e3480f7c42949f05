// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package main is the entry point for the recommerce command line tool.
//
// recommerce loads user profiles, the product catalog and historical
// ratings, then answers recommendation and search requests as JSON.
//
// # Commands
//
//	recommerce recommend <user-id> [--query text] [--top-n N]
//	recommerce search [query...] [--top-k N]
//	recommerce status
//
// Known users receive collaborative recommendations. Unknown users receive
// the semantic search results for --query.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Command line flags (--source, --users, --products, --ratings)
//   - Environment variables (DATA_SOURCE, DATA_USERS_PATH, LOG_LEVEL, ...)
//   - Config file (--config, CONFIG_PATH, or config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	export DATA_USERS_PATH=data/users.csv
//	export DATA_PRODUCTS_PATH=data/products.csv
//	export DATA_RATINGS_PATH=data/ratings.csv
//	./recommerce recommend u42 --query "winter jacket"
//
// Reading the same files through DuckDB:
//
//	./recommerce --source duckdb search red shoes --top-k 3
package main

import (
	"os"

	"github.com/tomtom215/recommerce/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
