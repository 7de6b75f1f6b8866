package blob

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss reports an absent or expired cache entry.
var ErrCacheMiss = errors.New("blob: cache miss")

type cacheEntry struct {
	value   any
	expires time.Time
}

// MemoryCache is an in-process CacheProvider. Entries with a zero or
// negative TTL live until Delete or Clear.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]cacheEntry{},
		now:     time.Now,
	}
}

// Get returns the value stored under key, or ErrCacheMiss when the entry is
// absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (any, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores value under key. A positive TTL bounds the entry's lifetime.
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes the entry stored under key, if present.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
	return nil
}
