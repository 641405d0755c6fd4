package routing

import (
	"context"
	"sync"
	"time"
)

// CachedWalk is a cache entry.
type CachedWalk struct {
	Walk      *Walk     `json:"walk"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache stores walking routes by grid key.
type Cache interface {
	// Get returns the entry for key. A miss returns (nil, nil).
	Get(ctx context.Context, key string) (*CachedWalk, error)
	// Set stores an entry that may be evicted after ttl.
	Set(ctx context.Context, key string, entry *CachedWalk, ttl time.Duration) error
}

// MemoryCache is an in-process Cache with lazy expiry.
type MemoryCache struct {
	mu              sync.RWMutex
	entries         map[string]memoryEntry
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

type memoryEntry struct {
	value     *CachedWalk
	expiresAt time.Time
}

// NewMemoryCache creates a MemoryCache that sweeps expired entries at most
// once per cleanupInterval (default: 5 minutes).
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &MemoryCache{
		entries:         make(map[string]memoryEntry),
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*CachedWalk, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CachedWalk, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = memoryEntry{value: entry, expiresAt: now.Add(ttl)}
	c.cleanupIfNeeded(now)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

// cleanupIfNeeded must be called with the write lock held.
func (c *MemoryCache) cleanupIfNeeded(now time.Time) {
	if now.Sub(c.lastCleanup) < c.cleanupInterval {
		return
	}
	c.lastCleanup = now

	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
