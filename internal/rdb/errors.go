package rdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrComponentNotFound is returned when a component is not present in an
	// entry's metadata index.
	ErrComponentNotFound = errors.New("component not found")
	// ErrEntryNotFound is returned when no entry matches the requested id or name.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrDuplicateEntry is returned when adding a model whose derived name is
	// already registered and entry replacement is disabled.
	ErrDuplicateEntry = errors.New("entry already exists")
	// ErrNoOwningEntry is returned when materializing a selection result that
	// was built detached from any entry.
	ErrNoOwningEntry = errors.New("selection result is not attached to an entry")
)

// MissingSeriesError reports a valid component that has no series stored for
// the requested output mode. Selection is all-or-nothing: the first missing
// pair aborts the whole selection.
type MissingSeriesError struct {
	Component string
	Mode      string
}

func (e *MissingSeriesError) Error() string {
	return fmt.Sprintf("component %q has no series for mode %q", e.Component, e.Mode)
}

// AggregationError reports a bucket count outside [1, snapshot count].
type AggregationError struct {
	Buckets   int
	Snapshots int
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("invalid bucket count %d for %d snapshots (want 1..%d)",
		e.Buckets, e.Snapshots, e.Snapshots)
}
