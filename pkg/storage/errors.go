package storage

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned by Get when no record exists for the key.
	ErrNotFound = errors.New("record not found")
)
