package repositories

import "errors"

var (
	// ErrNotFound is returned when a row is absent or logically deleted.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when a caller-supplied id is not a UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrNoTransaction is returned by writes issued outside a unit of work.
	ErrNoTransaction = errors.New("write requires an open unit of work")
	// ErrTxDone is returned when a unit of work is committed or rolled back twice.
	ErrTxDone = errors.New("unit of work already finished")
	// ErrInsufficientStock is returned when a conditional stock decrement matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleWrite is returned when a guarded update finds the row changed since it was read.
	ErrStaleWrite = errors.New("stale write")
)
