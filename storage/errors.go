package storage

import "errors"

var (
	// ErrEmptyFilter rejects unfiltered bulk deletes.
	ErrEmptyFilter = errors.New("filter must set at least one field")

	// ErrPointNotFound is returned when a point ID does not exist.
	ErrPointNotFound = errors.New("point not found")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)
