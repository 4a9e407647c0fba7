// Package cache implements the read-through response cache that sits in front
// of the generative AI service. Entries are immutable once written and never
// expire; a later Put for an existing key is a no-op.
package cache

import "context"

// Store is a persistent key/value backend. Every method may fail; callers
// decide how failures are treated.
type Store interface {
	// Get returns the stored value and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key unless the key already exists.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
