package domain

import "errors"

var (
	// ErrInvalidLimit is returned by Batch for a non-positive batch size.
	ErrInvalidLimit = errors.New("batch limit must be positive")

	// ErrUnsupportedFormat is returned for output formats other than shef and csv.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrLookupMiss means a single-station selector matched no reference row.
	// It is the only error a run absorbs.
	ErrLookupMiss = errors.New("station not found in reference table")

	// ErrTransport wraps failed or malformed calls to the observation service.
	ErrTransport = errors.New("transport error")

	// ErrFileState means a snapshot file an operation depends on is missing.
	ErrFileState = errors.New("snapshot file state")
)
