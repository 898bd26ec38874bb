package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nutrikatori/backend/internal/domain"
)

// entry is a cached value and the moment it stops being served
type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// sweepEvery is how many writes pass between sweeps of expired entries
const sweepEvery = 128

// MemoryCache is an in-process CacheRepository with per-key TTL. Expired
// entries are dropped when they are next read, on every sweepEvery-th Set,
// or by Purge; nothing runs in the background.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]entry
	now    func() time.Time
	writes int
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

// Get returns the value stored under key, or domain.ErrCacheMiss when it is
// absent or expired. Values come back in their JSON shape, the same way the
// Redis cache returns them.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCacheMiss
	}

	if item.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.items[key]; ok && current.expired(c.now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, domain.ErrCacheMiss
	}

	return item.value, nil
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var stored interface{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.writes++
	if c.writes%sweepEvery == 0 {
		c.purgeLocked(now)
	}

	c.items[key] = entry{value: stored, expiresAt: now.Add(ttl)}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	return ok && !item.expired(c.now()), nil
}

// Purge drops every expired entry and returns how many were removed.
func (c *MemoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.purgeLocked(c.now())
}

func (c *MemoryCache) purgeLocked(now time.Time) int {
	removed := 0
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of stored entries, expired ones included
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
