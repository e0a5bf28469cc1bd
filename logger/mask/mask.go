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

// Package mask implements each API's log mask (spec.md §6.4): a bitmask of
// enabled severity levels that every request logged against that API
// inherits unless overridden.
package mask

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	loglvl "github.com/nabbar/abinder/logger/level"
)

// Mask is a concurrency-safe bitmask of enabled levels.
type Mask struct {
	mu sync.RWMutex
	bs *bitset.BitSet
}

// New returns a Mask with every level up to and including lvl enabled,
// mirroring the usual "minimum severity" configuration knob.
func New(lvl loglvl.Level) *Mask {
	m := &Mask{bs: bitset.New(uint(loglvl.NilLevel) + 1)}
	m.SetThreshold(lvl)
	return m
}

// SetThreshold enables every level at or more severe than lvl and disables
// the rest.
func (m *Mask) SetThreshold(lvl loglvl.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bs.ClearAll()
	for l := loglvl.EmergencyLevel; l <= lvl; l++ {
		m.bs.Set(uint(l))
	}
}

// Enable turns a single level on, independent of the others.
func (m *Mask) Enable(lvl loglvl.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bs.Set(uint(lvl))
}

// Disable turns a single level off, independent of the others.
func (m *Mask) Disable(lvl loglvl.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bs.Clear(uint(lvl))
}

// Allowed reports whether lvl is enabled in the mask.
func (m *Mask) Allowed(lvl loglvl.Level) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bs.Test(uint(lvl))
}

// Clone returns an independent copy, used when a request inherits its API's
// mask but may later narrow it.
func (m *Mask) Clone() *Mask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Mask{bs: m.bs.Clone()}
}
