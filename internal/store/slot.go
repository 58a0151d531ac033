// Package store persists the aggregate as a single blob in a key-value slot.
//
// Every domain call reads the whole aggregate, mutates it and writes it back.
// Store serializes those calls within one process. Two processes sharing a
// slot are not coordinated: the last writer wins and silently discards the
// other's changes.
package store

import "context"

// Slot is a key-value persistence slot with whole-value get/set semantics.
type Slot interface {
	// Get returns the stored value, or nil and no error when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the stored value.
	Set(ctx context.Context, key string, value []byte) error
	// Name identifies the backend in logs and metrics.
	Name() string
	Close() error
}
