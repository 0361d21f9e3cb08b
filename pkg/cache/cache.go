// Package cache provides a bounded in-process TTL cache for expensive
// model responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 256

type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New returns a cache that holds at most size entries, each expiring after
// ttl. A non-positive size falls back to the default; a non-positive ttl
// disables expiry.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = defaultSize
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil || c.lru == nil {
		return zero, false
	}
	return c.lru.Get(key)
}

func (c *Cache[V]) Add(key string, value V) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

func (c *Cache[V]) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Key derives a stable cache key from the given parts. Inputs can be long
// prompts, so the key is a digest rather than the raw text.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
