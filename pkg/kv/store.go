// Package kv defines the key-value blob store the metadata layer persists
// through, mirroring the narrow get/set contract of the external store.
package kv

import "context"

// Store is a key-value blob store. Values are opaque bytes;
// callers own serialization.
type Store interface {
	// Get returns the values for the requested keys. Missing keys are
	// simply absent from the result, not an error.
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set writes every entry in one call. A nil value deletes the key.
	// Implementations apply the whole mapping or none of it.
	Set(ctx context.Context, entries map[string][]byte) error

	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
