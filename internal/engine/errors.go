package engine

import (
	"errors"
	"fmt"
)

// Load errors.
var (
	// ErrFetch indicates a dataset source could not be retrieved.
	ErrFetch = errors.New("dataset fetch failed")

	// ErrSchemaMismatch indicates the upstream columns do not match the expected layout.
	ErrSchemaMismatch = errors.New("dataset schema mismatch")

	// ErrUnmappedCategory indicates an observed category has no bucket.
	ErrUnmappedCategory = errors.New("unmapped category value")

	// ErrEmptyDataset indicates no rows survived cleanup.
	ErrEmptyDataset = errors.New("dataset is empty after cleanup")
)

// Query errors.
var (
	// ErrUnknownColumn indicates a requested column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

func unknownColumn(table, name string) error {
	return fmt.Errorf("%w: %q in %s", ErrUnknownColumn, name, table)
}
