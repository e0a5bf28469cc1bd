/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package expirecache is a generic TTL cache used for permission-check
// memoization (spec.md §6.4.2) and session expiry (spec.md §5.2). It
// generalizes the teacher's Cache[K,V] interface to carry a per-entry
// expiration instead of a single cache-wide one.
package expirecache

import (
	"sync"
	"time"
)

// Cache is a concurrency-safe key/value store where every entry carries its
// own expiration, set at insertion time.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[K]entry[V]
	now     func() time.Time
}

type entry[V any] struct {
	val V
	exp time.Time
}

// New returns a Cache whose entries expire ttl after insertion unless given
// an explicit expiry via SetExpiry.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.exp) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.val, true
}

// Set inserts or overwrites key with the cache's default TTL.
func (c *Cache[K, V]) Set(key K, val V) {
	c.SetExpiry(key, val, c.now().Add(c.ttl))
}

// SetExpiry inserts or overwrites key with an explicit absolute expiry,
// used by credential.Get to give each session its own timeout.
func (c *Cache[K, V]) SetExpiry(key K, val V, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{val: val, exp: exp}
}

// Delete removes key unconditionally.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of entries, including any not yet lazily evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes every expired entry and returns how many were evicted. A
// caller (e.g. evloop's periodic timer) runs this so expired entries do not
// linger merely because nothing ever looked them up again.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.now()
	removed := 0
	for k, e := range c.entries {
		if n.After(e.exp) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
