package server

import (
	"sync"
	"sync/atomic"
	"time"
)

// ResponseCache is a concurrent-safe LRU cache of encoded response bodies
// with TTL expiration.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type cacheEntry struct {
	body      []byte
	createdAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewResponseCache creates a cache holding at most maxEntries bodies, each
// for ttl.
func NewResponseCache(maxEntries int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get returns the cached body for key, or nil on a miss or expiry.
func (c *ResponseCache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.body
}

// Put stores body under key, evicting the least recently used entry when full.
func (c *ResponseCache) Put(key string, body []byte) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrder(key)
	} else {
		for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = &cacheEntry{body: body, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Stats returns cache performance statistics.
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (c *ResponseCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
