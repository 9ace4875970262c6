package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGetDel(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, err := c.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	// Second read must miss: GetDel is destructive.
	_, err = c.GetDel(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheMissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache()
	_, err := c.GetDel(context.Background(), "never-set")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	now := time.Now()
	c.SetTimeFunc(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Minute))

	// Just before expiry the value is still there.
	now = now.Add(10*time.Minute - time.Second)
	val, err := c.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Set(ctx, "k2", []byte("v2"), 10*time.Minute))

	// At expiry the value is gone.
	now = now.Add(10*time.Minute + time.Second)
	_, err = c.GetDel(ctx, "k2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheConcurrentGetDel(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	const goroutines = 16
	var wg sync.WaitGroup
	var hits int64
	var mu sync.Mutex

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetDel(ctx, "k"); err == nil {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly one goroutine may observe the value.
	assert.Equal(t, int64(1), hits)
}

func newRedisTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheFromClient(client), mr
}

func TestRedisCacheSetGetDel(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisTestCache(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, err := c.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	_, err = c.GetDel(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisTestCache(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Minute))

	mr.FastForward(10*time.Minute + time.Second)

	_, err := c.GetDel(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
