package embed

import (
	"context"
	"sync"

	"github.com/fwojciec/docsift"
)

// Ensure MemoryCache implements docsift.VectorCache at compile time.
var _ docsift.VectorCache = (*MemoryCache)(nil)

// MemoryCache is a process-local VectorCache.
// It is safe for concurrent use by multiple goroutines.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]docsift.CacheEntry
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]docsift.CacheEntry)}
}

// Get returns a copy of the entry for key, or ENOTFOUND.
func (c *MemoryCache) Get(ctx context.Context, key string) (*docsift.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, docsift.Errorf(docsift.ENOTFOUND, "cache miss")
	}
	return &docsift.CacheEntry{Vector: clone(entry.Vector), Degraded: entry.Degraded}, nil
}

// Set stores a copy of entry under key.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *docsift.CacheEntry) error {
	c.mu.Lock()
	c.entries[key] = docsift.CacheEntry{Vector: clone(entry.Vector), Degraded: entry.Degraded}
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
