package cache

import (
	"errors"
	"sync/atomic"
	"time"
)

// LayerStats counts where document lookups were answered
type LayerStats struct {
	MemoryHits int64
	DiskHits   int64
	Misses     int64
}

// LayeredCache answers from a fast tier first and falls back to a
// persistent tier, copying persistent hits into the fast tier.
type LayeredCache struct {
	fast       Cache
	persistent Cache
	promoteTTL time.Duration

	memoryHits atomic.Int64
	diskHits   atomic.Int64
	misses     atomic.Int64
}

// NewLayeredCache layers fast over persistent. Promoted entries live for promoteTTL in the fast tier.
func NewLayeredCache(fast, persistent Cache, promoteTTL time.Duration) *LayeredCache {
	return &LayeredCache{fast: fast, persistent: persistent, promoteTTL: promoteTTL}
}

// NewDocumentLayers builds the memory-over-disk cache used for normalized documents.
func NewDocumentLayers(dir string, ttl time.Duration) *LayeredCache {
	memoryTTL := time.Hour
	if ttl > 0 && ttl < memoryTTL {
		memoryTTL = ttl
	}
	return NewLayeredCache(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(dir, ttl), memoryTTL)
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.fast.Get(key); found {
		c.memoryHits.Add(1)
		return val, true
	}
	if val, found := c.persistent.Get(key); found {
		c.diskHits.Add(1)
		_ = c.fast.Set(key, val, c.promoteTTL)
		return val, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set writes the persistent tier first; the fast tier is only filled once
// the entry is durable.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.persistent.Set(key, value, ttl); err != nil {
		return err
	}
	fastTTL := ttl
	if fastTTL <= 0 || fastTTL > c.promoteTTL {
		fastTTL = c.promoteTTL
	}
	return c.fast.Set(key, value, fastTTL)
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.fast.Delete(key), c.persistent.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.fast.Clear(), c.persistent.Clear())
}

// Stats returns lookup counts since creation
func (c *LayeredCache) Stats() LayerStats {
	return LayerStats{
		MemoryHits: c.memoryHits.Load(),
		DiskHits:   c.diskHits.Load(),
		Misses:     c.misses.Load(),
	}
}
