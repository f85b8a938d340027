package service

import (
	"sync"
	"time"

	"github.com/vytalle/storefront/internal/core/domain"
)

const DefaultProductCacheTTL = 5 * time.Minute

// viewKey identifies one shaped catalog. Vendors with different commission
// rates see different your_commission values, so the rate is part of it.
type viewKey struct {
	role       domain.Role
	commission float64
}

type cacheEntry struct {
	value     []domain.ProductView
	fetchedAt time.Time
}

// viewCache holds one entry per viewKey. Values are computed outside the
// lock and stored under it. gen advances on clear; a value computed under an
// older generation is not stored.
type viewCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	gen     uint64
	entries map[viewKey]cacheEntry
}

func newViewCache(ttl time.Duration) *viewCache {
	return &viewCache{ttl: ttl, entries: make(map[viewKey]cacheEntry)}
}

// lookup is the result of get.
type lookup struct {
	entry cacheEntry
	found bool
	fresh bool
	gen   uint64
}

// get returns the entry for key, whether it is still within the TTL and the
// generation to hand back to put.
func (c *viewCache) get(key viewKey, now time.Time) lookup {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return lookup{gen: c.gen}
	}
	return lookup{entry: e, found: true, fresh: now.Sub(e.fetchedAt) < c.ttl, gen: c.gen}
}

// put stores value unless the cache was cleared since gen was read.
func (c *viewCache) put(key viewKey, value []domain.ProductView, now time.Time, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.entries[key] = cacheEntry{value: value, fetchedAt: now}
	return true
}

func (c *viewCache) clear() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[viewKey]cacheEntry)
	c.mu.Unlock()
}
