package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a stored value with its absolute expiry.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache implementation. Expired entries are
// treated as absent on read and reaped lazily; there is no background
// janitor. The time source is injectable so tests can advance the clock.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	timeFunc func() time.Time
}

// Ensure MemoryCache implements the Cache interface.
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]entry),
		timeFunc: time.Now,
	}
}

// SetTimeFunc overrides the cache's time source. Test helper.
func (c *MemoryCache) SetTimeFunc(f func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeFunc = f
}

// Set implements Cache.Set.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	c.entries[key] = entry{
		value:     stored,
		expiresAt: c.timeFunc().Add(ttl),
	}
	return nil
}

// GetDel implements Cache.GetDel. The mutex makes read-and-delete atomic:
// of two concurrent calls on the same key, exactly one sees the value.
func (c *MemoryCache) GetDel(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	delete(c.entries, key)

	if !c.timeFunc().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.value, nil
}
