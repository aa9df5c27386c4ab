package cache

import "time"

// LayeredCache fronts a durable cache with an in-memory layer
type LayeredCache struct {
	memory  Cache
	durable Cache
}

// NewLayeredCache creates a memory layer over the given durable cache
func NewLayeredCache(memoryTTL time.Duration, durable Cache) *LayeredCache {
	return &LayeredCache{
		memory:  NewMemoryCache(memoryTTL, 10*time.Minute),
		durable: durable,
	}
}

// Get retrieves a value from the cache (checks memory first, then the durable layer)
func (c *LayeredCache) Get(key string) ([]byte, bool, error) {
	if val, found, _ := c.memory.Get(key); found {
		return val, true, nil
	}

	val, found, err := c.durable.Get(key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory cache
	_ = c.memory.Set(key, val, 0)
	return val, true, nil
}

// Set writes through to the durable layer first so that a failed durable write
// never leaves memory ahead of storage
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.durable.Set(key, value, ttl); err != nil {
		return err
	}
	return c.memory.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.durable.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.durable.Clear()
}
