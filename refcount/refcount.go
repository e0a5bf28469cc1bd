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

// Package refcount is the atomic reference-counting primitive shared by
// datatype.Data, credential.Session and every other handle the binder hands
// out to more than one owner (spec.md §5, Data lifecycle). It generalizes
// the teacher's atomic value wrapper to an embeddable counter plus a
// generic registry keyed by handle.
package refcount

import (
	"sync"
	"sync/atomic"
)

// Counter is an embeddable atomic reference counter. Its zero value holds a
// count of 0; owners call Init(1) so that a freshly created object is
// already held by its creator.
type Counter struct {
	n int32
}

// Hold increments the count and returns the new value.
func (c *Counter) Hold() int32 {
	return atomic.AddInt32(&c.n, 1)
}

// Drop decrements the count and returns the new value. Callers must treat a
// return of 0 as "dispose now"; a negative return indicates a double-free
// and is a programming error.
func (c *Counter) Drop() int32 {
	return atomic.AddInt32(&c.n, -1)
}

// Count returns the current count without mutating it.
func (c *Counter) Count() int32 {
	return atomic.LoadInt32(&c.n)
}

// Init seeds the counter at n; it must only be called before the object is
// published to other goroutines.
func (c *Counter) Init(n int32) {
	atomic.StoreInt32(&c.n, n)
}

// Registry is a concurrency-safe map of refcounted handles. No other package
// of this module uses it: apiset keeps its own map and the permission
// engine dedups in-flight checks with singleflight.
type Registry[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewRegistry returns an empty Registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{m: make(map[K]V)}
}

func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[key]
	return v, ok
}

func (r *Registry[K, V]) Set(key K, val V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = val
}

func (r *Registry[K, V]) Delete(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
}

func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Keys returns a snapshot of every key currently registered.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]K, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

// GetOrSet returns the existing value for key if present, otherwise stores
// and returns make(). The bool result reports whether the value already
// existed.
func (r *Registry[K, V]) GetOrSet(key K, make func() V) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.m[key]; ok {
		return v, true
	}
	v := make()
	r.m[key] = v
	return v, false
}
