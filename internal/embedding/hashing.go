// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package embedding

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashingConfig configures a HashingEncoder.
type HashingConfig struct {
	// Dimension is the output vector length.
	Dimension int

	// ModelVersion tags the feature layout. Vectors from different
	// versions must not be compared.
	ModelVersion string

	// NGramWeight scales character trigram features relative to word
	// features. 0 disables trigrams.
	NGramWeight float64
}

// DefaultHashingConfig returns the encoder defaults.
func DefaultHashingConfig() HashingConfig {
	return HashingConfig{
		Dimension:    384,
		ModelVersion: "hashing-v1",
		NGramWeight:  0.5,
	}
}

// HashingEncoder is a deterministic feature-hashing text encoder.
//
// Lowercased word tokens and, optionally, their character trigrams are
// hashed with xxhash into Dimension buckets with a hash-derived sign.
// The result is L2-normalized, so texts sharing more tokens end up closer
// in Euclidean distance. Empty text encodes to the zero vector.
//
// HashingEncoder is safe for concurrent use.
type HashingEncoder struct {
	dim         int
	version     string
	ngramWeight float32
}

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

// NewHashingEncoder creates a HashingEncoder.
func NewHashingEncoder(cfg HashingConfig) (*HashingEncoder, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.NGramWeight < 0 || cfg.NGramWeight > 1 {
		return nil, fmt.Errorf("ngram weight must be within [0, 1], got %v", cfg.NGramWeight)
	}
	if strings.TrimSpace(cfg.ModelVersion) == "" {
		return nil, fmt.Errorf("model version is required")
	}
	return &HashingEncoder{
		dim:         cfg.Dimension,
		version:     cfg.ModelVersion,
		ngramWeight: float32(cfg.NGramWeight),
	}, nil
}

// Dimension implements Encoder.
func (e *HashingEncoder) Dimension() int { return e.dim }

// ModelVersion implements Encoder.
func (e *HashingEncoder) ModelVersion() string { return e.version }

// Encode implements Encoder.
func (e *HashingEncoder) Encode(text string) ([]float32, error) {
	vec := make([]float32, e.dim)

	for _, tok := range Tokenize(text) {
		e.add(vec, "w:"+tok, 1)
		if e.ngramWeight > 0 {
			for _, tri := range trigrams(tok) {
				e.add(vec, "c:"+tri, e.ngramWeight)
			}
		}
	}

	normalize(vec)
	return vec, nil
}

// add hashes feature into one bucket. The top bit of the hash picks the sign.
func (e *HashingEncoder) add(vec []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(e.dim)
	if h>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// Tokenize lowercases text and splits it into letter and digit runs.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// trigrams returns the character trigrams of a token padded with boundary marks.
func trigrams(tok string) []string {
	runes := []rune("^" + tok + "$")
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

// normalize scales vec to unit L2 norm in place. Zero vectors are left alone.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) * inv)
	}
}
