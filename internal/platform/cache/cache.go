// Package cache provides a small expiring key-value store abstraction
// used for single-use verification tokens. Two implementations exist: a
// Redis-backed one for multi-node deployments and an in-process one for
// single-node use and tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent, whether it was never
// set, already consumed, or expired. Callers cannot distinguish these
// cases, which is what the single-use token protocol requires.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is an expiring key-value store.
//
// GetDel must be atomic: when two concurrent calls race on the same key,
// exactly one of them observes the value and the other gets ErrCacheMiss.
type Cache interface {
	// Set stores value under key with an absolute TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetDel atomically retrieves and removes the value stored under key.
	// Returns ErrCacheMiss if the key is absent or expired.
	GetDel(ctx context.Context, key string) ([]byte, error)
}
