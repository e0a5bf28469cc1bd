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

// Package apiset is the named API registry (spec.md §3's "API set" entity):
// an ordered name→API map with an optional on-lack resolver, plus the
// per-group mutex serialization noconcurrency APIs need.
package apiset

import (
	"sync"

	"github.com/nabbar/abinder/api"
	liberr "github.com/nabbar/abinder/errors"
)

// Resolver is invoked the first time an unknown name is queried; it is
// tried at most once per name, whether it succeeds or not.
type Resolver func(name string) (*api.API, error)

// Set is an ordered name→API registry with an optional on-lack resolver.
type Set struct {
	name string

	mu       sync.RWMutex
	order    []string
	byName   map[string]*api.API
	resolver Resolver
	tried    map[string]struct{}

	groups sync.Map // group key (usually *api.API) -> *sync.Mutex
}

// New returns an empty, named Set.
func New(name string) *Set {
	return &Set{
		name:   name,
		byName: make(map[string]*api.API),
		tried:  make(map[string]struct{}),
	}
}

func (s *Set) Name() string { return s.name }

// SetResolver installs the on-lack resolver; it replaces any previous one.
func (s *Set) SetResolver(r Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
}

// Add registers a under its own name, failing if the name is already
// taken.
func (s *Set) Add(a *api.API) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[a.Name]; exists {
		return liberr.New(liberr.StateVerbExists, "api already declared in set: "+a.Name)
	}
	s.byName[a.Name] = a
	s.order = append(s.order, a.Name)
	return nil
}

// Remove drops name from the set; it is a no-op if name is absent.
func (s *Set) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[name]; !ok {
		return
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get resolves name to its API, invoking the on-lack resolver at most once
// if name is not already present.
func (s *Set) Get(name string) (*api.API, error) {
	s.mu.RLock()
	a, ok := s.byName[name]
	s.mu.RUnlock()
	if ok {
		return a, nil
	}

	s.mu.Lock()
	if _, already := s.tried[name]; already {
		s.mu.Unlock()
		return nil, liberr.New(liberr.ResNotFound, "api not found: "+name)
	}
	s.tried[name] = struct{}{}
	resolver := s.resolver
	s.mu.Unlock()

	if resolver == nil {
		return nil, liberr.New(liberr.ResNotFound, "api not found: "+name)
	}

	resolved, err := resolver(name)
	if err != nil {
		return nil, liberr.New(liberr.ResNotFound, "api resolution failed for "+name, err)
	}
	if err := s.Add(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// Names returns the registration order of currently-known API names.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of currently-registered APIs, not counting
// resolver misses.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// GroupLock returns the mutex serializing invocations sharing group
// (spec.md §4.5's noconcurrency scheduling), creating it on first use.
func (s *Set) GroupLock(group interface{}) *sync.Mutex {
	v, _ := s.groups.LoadOrStore(group, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// SealAll seals every currently-registered API, checking classes across
// the whole set (supplemented from the original's afb-api-v4.c): an API
// requiring class X only seals if some API registered in the set provides
// X, sealed or not, the requiring API itself included.
func (s *Set) SealAll() error {
	s.mu.RLock()
	apis := make([]*api.API, 0, len(s.order))
	for _, n := range s.order {
		apis = append(apis, s.byName[n])
	}
	s.mu.RUnlock()

	provided := func(class string) bool {
		for _, a := range apis {
			if a.ProvidesClass(class) {
				return true
			}
		}
		return false
	}

	for _, a := range apis {
		if err := a.Seal(provided); err != nil {
			return err
		}
	}
	return nil
}
