package vectorstore

import "errors"

var (
	// ErrNoItems is returned when CreateCollection is called without items.
	ErrNoItems = errors.New("no items to index")

	// ErrDimensionMismatch indicates items with inconsistent vector sizes.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
