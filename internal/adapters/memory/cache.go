package memory

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"

	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// Cache implements ports.CacheService with an in-process LRU.
type Cache struct {
	lru gcache.Cache
}

// NewCache creates an LRU cache holding at most size entries.
func NewCache(size int) *Cache {
	return &Cache{lru: gcache.New(size).LRU().Build()}
}

// Get returns a copy of the cached value, or ports.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.lru.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), nil
}

// Set stores a copy of value for ttlSeconds; zero or less means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	b := append([]byte(nil), value...)
	if ttlSeconds <= 0 {
		return c.lru.Set(key, b)
	}
	return c.lru.SetWithExpire(key, b, time.Duration(ttlSeconds)*time.Second)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}
