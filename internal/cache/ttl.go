// Package cache provides the process-local TTL cache and the unseen badge
// caches built on it and on redis.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a bounded LRU whose entries also expire after a fixed lifetime.
type TTL[K comparable, V any] struct {
	lru *lru.Cache[K, entry[V]]
	ttl time.Duration
	now func() time.Time
}

func NewTTL[K comparable, V any](size int, ttl time.Duration) (*TTL[K, V], error) {
	l, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTL[K, V]{lru: l, ttl: ttl, now: time.Now}, nil
}

func (c *TTL[K, V]) Set(key K, v V) {
	c.lru.Add(key, entry[V]{value: v, expiresAt: c.now().Add(c.ttl)})
}

// Get returns the cached value; expired entries are evicted on read.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

func (c *TTL[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

func (c *TTL[K, V]) Len() int { return c.lru.Len() }
