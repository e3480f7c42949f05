// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-123")
	}
}

func TestContextWithNewRequestID(t *testing.T) {
	t.Parallel()

	id1 := RequestIDFromContext(ContextWithNewRequestID(context.Background()))
	id2 := RequestIDFromContext(ContextWithNewRequestID(context.Background()))

	if len(id1) != 36 {
		t.Errorf("expected UUID length 36, got %d (%q)", len(id1), id1)
	}
	if id1 == id2 {
		t.Error("expected unique request IDs")
	}
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{"with id", ContextWithRequestID(context.Background(), "req-abc"), true},
		{"without id", context.Background(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := WithRequestID(tt.ctx, NewTestLogger(&buf))
			l.Info().Msg("dispatch")

			got := strings.Contains(buf.String(), `"request_id":"req-abc"`)
			if got != tt.want {
				t.Errorf("request_id present = %v, want %v: %s", got, tt.want, buf.String())
			}
			if !tt.want && strings.Contains(buf.String(), "request_id") {
				t.Errorf("unexpected request_id field: %s", buf.String())
			}
		})
	}
}
