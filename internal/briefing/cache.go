package briefing

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key identifies one cached briefing.
type Key struct {
	LocationID int64
	Consumer   string
	DateKey    string
}

// Cache is a bounded, expiring store of built briefings.
type Cache struct {
	lru *expirable.LRU[Key, *Briefing]
}

// NewCache creates a cache holding at most size briefings, each for at most
// ttl.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 1
	}
	return &Cache{lru: expirable.NewLRU[Key, *Briefing](size, nil, ttl)}
}

// Get returns the cached briefing for k.
func (c *Cache) Get(k Key) (*Briefing, bool) {
	return c.lru.Get(k)
}

// Add stores b under k.
func (c *Cache) Add(k Key, b *Briefing) {
	c.lru.Add(k, b)
}

// InvalidateLocation drops every briefing of a location for one date.
func (c *Cache) InvalidateLocation(locationID int64, dateKey string) {
	for _, k := range c.lru.Keys() {
		if k.LocationID == locationID && k.DateKey == dateKey {
			c.lru.Remove(k)
		}
	}
}

// InvalidateConsumer drops every briefing built for a consumer.
func (c *Cache) InvalidateConsumer(consumer string) {
	for _, k := range c.lru.Keys() {
		if k.Consumer == consumer {
			c.lru.Remove(k)
		}
	}
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached briefings.
func (c *Cache) Len() int {
	return c.lru.Len()
}
