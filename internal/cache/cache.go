// Package cache provides the key-value projection placed in front of the
// database. Every user of the cache must stay correct when it is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a keyed store of JSON encoded values.
type Cache interface {
	// Get decodes the value stored at key into dest.
	// Returns false when the key does not exist.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value at key. A zero ttl keeps the value until it is deleted.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
	// IncrIfExists atomically increments the integer stored at key.
	// Missing keys are left missing and false is returned.
	IncrIfExists(ctx context.Context, key string) (bool, error)
}

// Nop is a cache that never stores anything.
type Nop struct{}

// NewNop creates a cache that always misses.
func NewNop() Nop {
	return Nop{}
}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error               { return nil }
func (Nop) IncrIfExists(context.Context, string) (bool, error)    { return false, nil }
