package metadata

import "sync"

// cache maps local title ids to resolved metadata. It is safe for
// concurrent use and has no eviction: a resolved entry lives for the
// process lifetime, and a cold cache simply re-resolves. Duplicate writes
// for the same key are idempotent (last writer wins); concurrent resolvers
// for one id converge on equivalent values.
type cache struct {
	mu      sync.RWMutex
	entries map[int64]*Resolved
}

func newCache() *cache {
	return &cache{entries: make(map[int64]*Resolved)}
}

func (c *cache) get(titleID int64) (*Resolved, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.entries[titleID]
	return r, ok
}

func (c *cache) set(titleID int64, r *Resolved) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[titleID] = r
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
