package imagegen

import (
	"sync"
	"time"
)

// OGImageCache holds rendered images per selection for a short period, so
// link previews fetched repeatedly by crawlers are rendered once.
type OGImageCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewOGImageCache creates a cache with the given TTL holding at most
// maxEntries images.
func NewOGImageCache(ttl time.Duration, maxEntries int) *OGImageCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &OGImageCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached image for key if still valid.
func (c *OGImageCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores an image, evicting expired entries when the cache is full.
func (c *OGImageCache) Set(key string, data []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	if len(c.entries) >= c.maxEntries {
		// Still full: drop an arbitrary entry.
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: now.Add(c.ttl)}
}

// Len returns the number of entries, expired or not.
func (c *OGImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
