package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// defaultCacheTTL bounds how stale a cached analytics payload may be.
const defaultCacheTTL = 30 * time.Second

// queryKey hashes the parameters of an analytics fetch into a cache key.
func queryKey(path string, pageID int, start, end string) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s|%d|%s|%s", path, pageID, start, end))
}

// cacheEntry is one cached payload with expiry.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// ttlCache is a small expiring cache for analytics responses. Dashboard and
// summary queries are expensive server-side and the views re-request them on
// every render, so recent payloads are served locally within the TTL.
type ttlCache struct {
	mu      sync.Mutex
	entries map[uint64]cacheEntry
	ttl     time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ttlCache{
		entries: make(map[uint64]cacheEntry),
		ttl:     ttl,
	}
}

// get returns the cached value if present and unexpired.
func (c *ttlCache) get(key uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// put stores a value under key for the cache TTL.
func (c *ttlCache) put(key uint64, value any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// invalidate drops every entry; used after a collect run so the next fetch
// reflects the freshly gathered analytics.
func (c *ttlCache) invalidate() {
	c.mu.Lock()
	c.entries = make(map[uint64]cacheEntry)
	c.mu.Unlock()
}
