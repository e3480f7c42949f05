// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/recommerce/internal/config"
	"github.com/tomtom215/recommerce/internal/dataset"
	"github.com/tomtom215/recommerce/internal/embedding"
	"github.com/tomtom215/recommerce/internal/logging"
	"github.com/tomtom215/recommerce/internal/recommend"
)

// rootOptions holds persistent flag values.
type rootOptions struct {
	configPath   string
	source       string
	usersPath    string
	productsPath string
	ratingsPath  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "recommerce",
		Short:         "Product recommendations from user profiles, ratings and product names",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (overrides CONFIG_PATH)")
	flags.StringVar(&opts.source, "source", "", `data source, "csv" or "duckdb"`)
	flags.StringVar(&opts.usersPath, "users", "", "path to the users CSV file")
	flags.StringVar(&opts.productsPath, "products", "", "path to the products CSV file")
	flags.StringVar(&opts.ratingsPath, "ratings", "", "path to the ratings CSV file")

	root.AddCommand(
		newRecommendCmd(opts),
		newSearchCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var (
		query string
		topN  int
	)

	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Recommend products for a user",
		Long: `Recommend products for a user.

Known users get products rated by their most similar users. Unknown users
get the products whose names best match --query.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := setup(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-n") {
				topN = engine.Config().DefaultTopN
			}

			ctx := logging.ContextWithNewRequestID(commandContext(cmd))
			recs, err := engine.Recommend(ctx, args[0], query, topN)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text query used for unknown users")
	cmd.Flags().IntVarP(&topN, "top-n", "n", 0, "number of products (default from config)")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Find products whose names match a free-text query",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := setup(opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-k") {
				topK = engine.Config().DefaultTopK
			}

			ctx := logging.ContextWithNewRequestID(commandContext(cmd))
			recs, err := engine.Search(ctx, strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of products (default from config)")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load the data and report engine status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := setup(opts)
			if err != nil {
				return err
			}

			initErr := engine.EnsureReady(commandContext(cmd))
			if err := writeJSON(cmd.OutOrStdout(), engine.Status()); err != nil {
				return err
			}
			return initErr
		},
	}
}

// setup loads configuration, initializes logging and creates the engine.
func setup(opts *rootOptions) (*recommend.Engine, error) {
	if opts.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, opts.configPath); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	return newEngine(cfg)
}

// applyFlagOverrides copies explicitly set persistent flags over cfg.
func applyFlagOverrides(cfg *config.Config, opts *rootOptions) {
	if opts.source != "" {
		cfg.Data.Source = opts.source
	}
	if opts.usersPath != "" {
		cfg.Data.UsersPath = opts.usersPath
	}
	if opts.productsPath != "" {
		cfg.Data.ProductsPath = opts.productsPath
	}
	if opts.ratingsPath != "" {
		cfg.Data.RatingsPath = opts.ratingsPath
	}
}

// newEngine wires the data source, encoder and engine from cfg.
func newEngine(cfg *config.Config) (*recommend.Engine, error) {
	source, err := dataset.NewSource(cfg.Data.Source, dataset.Paths{
		Users:    cfg.Data.UsersPath,
		Products: cfg.Data.ProductsPath,
		Ratings:  cfg.Data.RatingsPath,
	})
	if err != nil {
		return nil, err
	}

	encoder, err := embedding.NewHashingEncoder(embedding.HashingConfig{
		Dimension:    cfg.Embedding.Dimension,
		ModelVersion: cfg.Embedding.ModelVersion,
		NGramWeight:  cfg.Embedding.NGramWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	engineCfg := &recommend.Config{
		Neighbors:      cfg.Recommend.Neighbors,
		DefaultTopN:    cfg.Recommend.DefaultTopN,
		DefaultTopK:    cfg.Recommend.DefaultTopK,
		Workers:        cfg.Embedding.Workers,
		QueryCacheSize: cfg.Recommend.QueryCacheSize,
		QueryCacheTTL:  cfg.Recommend.QueryCacheTTL,
	}

	logging.Info().
		Str("source", source.Name()).
		Str("users", cfg.Data.UsersPath).
		Str("products", cfg.Data.ProductsPath).
		Str("ratings", cfg.Data.RatingsPath).
		Str("model_version", encoder.ModelVersion()).
		Msg("Configuration loaded")

	return recommend.NewEngine(engineCfg, source, encoder, logging.Logger())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
