// Package memcache wraps an in-process TTL cache behind a small typed API.
//
// The member-directory lookups are cached for a short, bounded TTL so that
// role changes become visible within that window without hammering the
// directory database on every request. The cache is constructed once in
// bootstrap and handed to the stores that need it; nothing in this codebase
// reaches for a package-level cache singleton.
package memcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a bounded time-based key/value cache. Entries expire
// independently per key; there is no cross-key invalidation.
type Cache struct {
	c   *gocache.Cache
	ttl time.Duration
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		c:   gocache.New(ttl, 2*ttl),
		ttl: ttl,
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	return c.c.Get(key)
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.c.Set(key, value, gocache.DefaultExpiration)
}

// Delete evicts key immediately.
func (c *Cache) Delete(key string) {
	c.c.Delete(key)
}

// Flush evicts every entry. Useful for tests.
func (c *Cache) Flush() {
	c.c.Flush()
}
