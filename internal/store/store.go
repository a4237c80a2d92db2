// Package store holds the persistence contracts over the users and homes
// collections. Services depend on the interfaces; the Mongo implementations
// live alongside them. Mutations that could race on a single document use
// atomic filtered updates, never read-modify-write.
package store

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("duplicate key")
)
