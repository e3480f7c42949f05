// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedData matches every *DataError via errors.Is.
var ErrMalformedData = errors.New("malformed data")

// Causes carried in DataError.Err.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidNumber = errors.New("invalid number")
	ErrInvalidValue  = errors.New("invalid value")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrEmptyDataset  = errors.New("empty dataset")
)

// DataError reports malformed or missing persisted input.
// It is fatal to engine initialization and never retried.
type DataError struct {
	Dataset string // users, products or ratings
	Column  string // empty when not column specific
	Row     int    // 1-based data row (header excluded), 0 when not row specific
	Err     error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString(e.Dataset)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedData.
func (e *DataError) Is(target error) bool {
	return target == ErrMalformedData
}

// closeQuietly closes a resource, ignoring errors.
// Used in defer statements where close errors cannot be meaningfully handled.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
