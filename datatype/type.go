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

// Package datatype is the binder's typed data and conversion graph (spec.md
// §3/§4.2): a Type registry assigning each type a small arena index, and a
// Data handle wrapping a byte payload tagged with its Type.
package datatype

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/abinder/errors"
)

// Type flag bits.
const (
	flagShareable uint = iota
	flagStreamable
	flagOpaque
)

// ConvertFunc produces the destination type's encoding from a source byte
// payload.
type ConvertFunc func(src []byte) ([]byte, error)

// UpdateFunc writes the destination type's encoding of src directly into
// dst, instead of allocating a fresh payload.
type UpdateFunc func(src []byte, dst *Data) error

type opset struct {
	to      ConvertFunc
	from    ConvertFunc
	updTo   UpdateFunc
	updFrom UpdateFunc
}

// Type is a named type descriptor. Its
// conversion table is keyed by the arena index of the *other* type involved
// in each operation (spec.md §4.2's "arena + index" guidance), so lookups
// during a conversion search are O(1) map accesses rather than name
// comparisons.
type Type struct {
	id     uint16
	name   string
	family *Type

	flags *bitset.BitSet

	mu  sync.RWMutex
	ops map[uint16]*opset
}

func newType(name string, family *Type) *Type {
	return &Type{
		name:   name,
		family: family,
		flags:  bitset.New(3),
		ops:    make(map[uint16]*opset),
	}
}

func (t *Type) Name() string { return t.name }
func (t *Type) ID() uint16   { return t.id }
func (t *Type) Family() *Type { return t.family }

func (t *Type) Shareable() bool  { return t.flags.Test(flagShareable) }
func (t *Type) Streamable() bool { return t.flags.Test(flagStreamable) }
func (t *Type) Opaque() bool     { return t.flags.Test(flagOpaque) }

func (t *Type) setFlag(bit uint, v bool) {
	if v {
		t.flags.Set(bit)
	} else {
		t.flags.Clear(bit)
	}
}

// SetShareable, SetStreamable and SetOpaque may be called at any time;
// Register does not freeze a type's flags or its conversion table.
func (t *Type) SetShareable(v bool)  { t.setFlag(flagShareable, v) }
func (t *Type) SetStreamable(v bool) { t.setFlag(flagStreamable, v) }
func (t *Type) SetOpaque(v bool)     { t.setFlag(flagOpaque, v) }

func (t *Type) opsFor(other *Type) *opset {
	t.mu.RLock()
	o, ok := t.ops[other.id]
	t.mu.RUnlock()
	if ok {
		return o
	}
	return nil
}

func (t *Type) opsForOrCreate(other *Type) *opset {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.ops[other.id]
	if !ok {
		o = &opset{}
		t.ops[other.id] = o
	}
	return o
}

// RegisterConvertTo installs "this type → to" on t: given t's bytes, produce
// to's bytes.
func (t *Type) RegisterConvertTo(to *Type, fn ConvertFunc) {
	t.opsForOrCreate(to).to = fn
}

// RegisterConvertFrom installs "from → this type" on t: given from's bytes,
// produce t's bytes.
func (t *Type) RegisterConvertFrom(from *Type, fn ConvertFunc) {
	t.opsForOrCreate(from).from = fn
}

// RegisterUpdateTo installs the in-place variant of RegisterConvertTo.
func (t *Type) RegisterUpdateTo(to *Type, fn UpdateFunc) {
	t.opsForOrCreate(to).updTo = fn
}

// RegisterUpdateFrom installs the in-place variant of RegisterConvertFrom.
func (t *Type) RegisterUpdateFrom(from *Type, fn UpdateFunc) {
	t.opsForOrCreate(from).updFrom = fn
}

// familyChain returns t and every ancestor, t first.
func (t *Type) familyChain() []*Type {
	chain := []*Type{t}
	for f := t.family; f != nil; f = f.family {
		chain = append(chain, f)
	}
	return chain
}

// isAncestorOf reports whether t appears in other's family chain.
func (t *Type) isAncestorOf(other *Type) bool {
	for _, a := range other.familyChain() {
		if a == t {
			return true
		}
	}
	return false
}

var (
	registryMu   sync.RWMutex
	registryByID []*Type
	registryName = map[string]*Type{}
)

// Register assigns name's type an arena index and publishes it; registering
// the same name twice is a programming error, matching the "no duplicate
// names" invariant of spec.md §3.
func Register(name string, family *Type) (*Type, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registryName[name]; exists {
		return nil, liberr.New(liberr.StateDuplicateDeclare, "type already registered: "+name)
	}

	t := newType(name, family)
	t.id = uint16(len(registryByID))
	registryByID = append(registryByID, t)
	registryName[name] = t
	return t, nil
}

// Lookup returns a registered type by name.
func Lookup(name string) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registryName[name]
	return t, ok
}

// ByID returns a registered type by its arena index.
func ByID(id uint16) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if int(id) >= len(registryByID) {
		return nil, false
	}
	return registryByID[id], true
}

// All returns a snapshot of every registered type, used by the long-indirect
// conversion search layer.
func All() []*Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Type, len(registryByID))
	copy(out, registryByID)
	return out
}
