// Package navigation drives the portal's dependent dropdown cascade
// (state -> district -> complex -> court -> date) on a browser session.
package navigation

import (
	"maps"
	"sync"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

type cacheKey struct {
	level  types.Level
	parent string
}

// DropdownCache memoizes option lists per (level, parent id). Entries are write-once:
// the portal does not change its lists within a session. A cache belongs to one
// session because option ids may be cookie scoped.
type DropdownCache struct {
	mu      sync.Mutex
	entries map[cacheKey]map[string]string
}

// NewDropdownCache returns an empty cache.
func NewDropdownCache() *DropdownCache {
	return &DropdownCache{entries: make(map[cacheKey]map[string]string)}
}

// Get returns a copy of the cached options for the key.
func (c *DropdownCache) Get(level types.Level, parent string) (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[cacheKey{level, parent}]
	if !ok {
		return nil, false
	}
	return maps.Clone(m), true
}

// Put stores options for the key unless an entry exists, and returns the entry that
// is now cached.
func (c *DropdownCache) Put(level types.Level, parent string, options map[string]string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{level, parent}
	if existing, ok := c.entries[key]; ok {
		return maps.Clone(existing)
	}
	c.entries[key] = maps.Clone(options)
	return maps.Clone(options)
}

// Len returns the number of cached keys.
func (c *DropdownCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
