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

// Package event is named-event distribution (spec.md §4.6): push to a
// subscriber set, and broadcast to every handler whose pattern matches.
package event

import (
	"sync"

	"github.com/nabbar/abinder/datatype"
	"github.com/nabbar/abinder/match"
)

// Subscriber receives pushed/broadcast events. Implementations must not
// block; the loop thread drives every delivery.
type Subscriber interface {
	OnEvent(e *Event, params []*datatype.Data)
}

// Event is a named, numbered event with a subscriber set (spec.md §3).
type Event struct {
	id   uint64
	name string

	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

var (
	registryMu sync.Mutex
	nextID     uint64
	byName     = map[string]*Event{}
)

// New returns the Event for name, creating it on first use; repeated calls
// with the same name return the same Event.
func New(name string) *Event {
	registryMu.Lock()
	defer registryMu.Unlock()

	if e, ok := byName[name]; ok {
		return e
	}
	nextID++
	e := &Event{id: nextID, name: name, subs: make(map[Subscriber]struct{})}
	byName[name] = e
	return e
}

func (e *Event) ID() uint64    { return e.id }
func (e *Event) Name() string  { return e.name }

// Subscribe attaches sub to e's subscriber set.
func (e *Event) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[sub] = struct{}{}
}

// Unsubscribe detaches sub; it is a no-op if sub was not subscribed.
func (e *Event) Unsubscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, sub)
}

// Push delivers to every live subscriber exactly once, in the order they
// were registered is not guaranteed, but delivery to a given subscriber for
// a given event is always in push-call order (spec.md §3's per-event FIFO
// invariant) since Push never reenters the loop thread concurrently.
func (e *Event) Push(params []*datatype.Data) {
	e.mu.Lock()
	subs := make([]Subscriber, 0, len(e.subs))
	for s := range e.subs {
		subs = append(subs, s)
	}
	e.mu.Unlock()

	for _, s := range subs {
		s.OnEvent(e, params)
	}
}

// Handler is a broadcast pattern registered by an API: Pattern is matched
// fnmatch-style (spec.md §4.6) against the broadcast event's name.
type Handler struct {
	Pattern       string
	CaseSensitive bool
	Notify        func(e *Event, params []*datatype.Data)
}

// OrphanHandler is invoked when a Broadcast matches no registered Handler,
// mirroring the mainctl Orphan_Event control callback (spec.md §9). No
// default is installed: a Broadcaster without one drops unmatched events.
type OrphanHandler func(name string, params []*datatype.Data)

// Broadcaster dispatches a named broadcast to every handler whose pattern
// matches, falling back to an orphan handler when nothing matches.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers []*Handler
	orphan    OrphanHandler
}

// NewBroadcaster returns a Broadcaster with no handlers; SetOrphanHandler
// must be called before Broadcast can report unmatched events, otherwise
// they are dropped without any callback invocation.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) AddHandler(h *Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Broadcaster) RemoveHandler(h *Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.handlers {
		if existing == h {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

func (b *Broadcaster) SetOrphanHandler(fn OrphanHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orphan = fn
}

// Broadcast delivers e to every handler whose pattern matches e's name; if
// none match, the orphan handler (if set) is invoked instead.
func (b *Broadcaster) Broadcast(e *Event, params []*datatype.Data) {
	b.mu.RLock()
	handlers := make([]*Handler, len(b.handlers))
	copy(handlers, b.handlers)
	orphan := b.orphan
	b.mu.RUnlock()

	matched := false
	for _, h := range handlers {
		if match.Glob(h.Pattern, e.name, h.CaseSensitive) {
			matched = true
			h.Notify(e, params)
		}
	}
	if !matched && orphan != nil {
		orphan(e.name, params)
	}
}
