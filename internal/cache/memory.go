package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process cache implementation, suitable for a
// single-instance deployment.
type MemoryCache struct {
	cache *gocache.Cache
}

// Ensure MemoryCache implements Interface
var _ Interface = (*MemoryCache)(nil)

func NewMemoryCache(defaultExpiration, cleanUpInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(defaultExpiration, cleanUpInterval)}
}

func (c *MemoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.cache.Set(key, value, duration)
}

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *MemoryCache) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := c.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	c.Set(key, val, duration)
	return val, nil
}

// Close closes the cache (no-op for the in-memory implementation).
func (c *MemoryCache) Close() error {
	return nil
}
