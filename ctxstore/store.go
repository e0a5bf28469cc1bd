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

// Package ctxstore is a generic, concurrency-safe key/value store bound to a
// context.Context lifetime (spec.md §5). No other package of this module
// imports it; the request cookie table and the apiset registry use plain
// maps. It generalizes the teacher's
// context.Config[T] pattern beyond a single comparable key type.
package ctxstore

import (
	"context"
	"sync"
)

// MapManage is the bare load/store/delete contract, independent of any
// particular backing map implementation.
type MapManage[K comparable, T any] interface {
	Load(key K) (T, bool)
	LoadOrStore(key K, val T) (T, bool)
	LoadAndDelete(key K) (T, bool)
	Store(key K, val T)
	Delete(key K)
	Clean()
	Len() int
	Walk(fct func(key K, val T) bool)
}

// Store is a MapManage[K,T] embedded in a context.Context, so a value store
// can be threaded through call chains the same way request-scoped deadlines
// and cancellation are.
type Store[K comparable, T any] interface {
	context.Context
	MapManage[K, T]

	// Clone returns a new Store sharing no state with the receiver, rooted
	// at the given parent context.
	Clone(parent context.Context) Store[K, T]

	// Merge copies every entry from src into the receiver, src's values
	// winning on key collision.
	Merge(src Store[K, T])
}

type store[K comparable, T any] struct {
	context.Context
	mu   sync.RWMutex
	data map[K]T
}

// New returns a Store rooted at parent with an empty backing map.
func New[K comparable, T any](parent context.Context) Store[K, T] {
	if parent == nil {
		parent = context.Background()
	}
	return &store[K, T]{
		Context: parent,
		data:    make(map[K]T),
	}
}

func (s *store[K, T]) Load(key K) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *store[K, T]) LoadOrStore(key K, val T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v, true
	}
	s.data[key] = val
	return val, false
}

func (s *store[K, T]) LoadAndDelete(key K) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	return v, ok
}

func (s *store[K, T]) Store(key K, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
}

func (s *store[K, T]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *store[K, T]) Clean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]T)
}

func (s *store[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Walk calls fct for every entry in unspecified order, stopping early if fct
// returns false. fct must not call back into the store.
func (s *store[K, T]) Walk(fct func(key K, val T) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if !fct(k, v) {
			return
		}
	}
}

func (s *store[K, T]) Clone(parent context.Context) Store[K, T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := New[K, T](parent)
	for k, v := range s.data {
		n.Store(k, v)
	}
	return n
}

func (s *store[K, T]) Merge(src Store[K, T]) {
	if src == nil {
		return
	}
	src.Walk(func(key K, val T) bool {
		s.Store(key, val)
		return true
	})
}
