package backtest

import (
	"sync"
	"time"
)

// cacheEntry represents a cached run result.
type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// ResultCache memoizes results by config fingerprint.
// A nil *ResultCache is a disabled cache.
// Entries assume the underlying bar and indicator data do not change;
// call Clear after loading new data.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration // zero keeps entries forever
	now   func() time.Time
}

// NewResultCache creates a cache whose entries expire after ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached result if available and not expired.
func (c *ResultCache) Get(key string) (*Result, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Set stores a result in the cache.
func (c *ResultCache) Set(key string, result *Result) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{result: result}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.store[key] = entry
}

// Clear removes all entries from the cache.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
