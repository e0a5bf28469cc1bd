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

package datatype

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/refcount"
)

// Data flag bits.
const (
	dataFlagConstant uint = iota
	dataFlagVolatile
	dataFlagOpaqueAssigned
)

// Disposer releases any resource backing a raw-created Data when its last
// reference is dropped.
type Disposer func(b []byte)

// Data is a refcounted, typed byte payload (spec.md §3's Data entity). A
// fresh Data starts with one live reference, already held by its creator.
type Data struct {
	ref refcount.Counter

	typ *Type

	mu       sync.RWMutex
	bytes    []byte
	disposer Disposer
	flags    *bitset.BitSet
	opaqueID uint32
	deps     []*Data

	convMu    sync.Mutex
	convEpoch uint64
	convCache map[uint16]*Data
}

// NewRaw wraps an existing buffer without copying it; disposer (if non-nil)
// runs once the last reference is released.
func NewRaw(t *Type, b []byte, disposer Disposer) *Data {
	d := &Data{typ: t, bytes: b, disposer: disposer, flags: bitset.New(3)}
	d.ref.Init(1)
	return d
}

// NewAlloc returns a zeroed, mutable Data of length n.
func NewAlloc(t *Type, n int) *Data {
	return NewRaw(t, make([]byte, n), nil)
}

// NewCopy returns a Data holding a private copy of b.
func NewCopy(t *Type, b []byte) *Data {
	cp := make([]byte, len(b))
	copy(cp, b)
	return NewRaw(t, cp, nil)
}

// Type returns the Data's type.
func (d *Data) Type() *Type { return d.typ }

// AddRef increments the reference count and returns the Data for chaining.
func (d *Data) AddRef() *Data {
	d.ref.Hold()
	return d
}

// Unref decrements the reference count, disposing the backing buffer and
// releasing every dependency once the count reaches zero. Unref on an
// already-disposed Data is a programming error.
func (d *Data) Unref() error {
	n := d.ref.Drop()
	if n > 0 {
		return nil
	}
	if n < 0 {
		return liberr.New(liberr.ProgDoubleReply, "double unref on data "+d.typ.name)
	}

	d.mu.Lock()
	b, disp := d.bytes, d.disposer
	deps := d.deps
	d.deps = nil
	d.bytes = nil
	d.mu.Unlock()

	if disp != nil {
		disp(b)
	}
	for _, p := range deps {
		_ = p.Unref()
	}
	if d.opaqueFlag() {
		opaqueForget(d.opaqueID)
	}
	return nil
}

func (d *Data) opaqueFlag() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flags.Test(dataFlagOpaqueAssigned)
}

// GetConst returns the payload for read-only access.
func (d *Data) GetConst() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bytes
}

// GetMutable returns the payload for in-place mutation; it fails if the
// Data has been marked constant.
func (d *Data) GetMutable() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.flags.Test(dataFlagConstant) {
		return nil, liberr.New(liberr.StateSealed, "data is constant: "+d.typ.name)
	}
	return d.bytes, nil
}

// SetConstant marks the Data read-only; reversible only via SetVolatile.
func (d *Data) SetConstant() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flags.Set(dataFlagConstant)
	d.flags.Clear(dataFlagVolatile)
}

// SetVolatile marks the Data mutable and clears any cached conversions, as
// its bytes may now change under callers holding a mutable view.
func (d *Data) SetVolatile() {
	d.mu.Lock()
	d.flags.Set(dataFlagVolatile)
	d.flags.Clear(dataFlagConstant)
	d.mu.Unlock()
	d.NotifyChanged()
}

// AddDependency records that d depends on parent: parent must outlive d, so
// parent is ref'd now and released when d is disposed.
func (d *Data) AddDependency(parent *Data) {
	parent.AddRef()
	d.mu.Lock()
	d.deps = append(d.deps, parent)
	d.mu.Unlock()
}

// NotifyChanged invalidates any cached conversions, used after a mutable
// view is written through.
func (d *Data) NotifyChanged() {
	d.convMu.Lock()
	d.convEpoch++
	d.convCache = nil
	d.convMu.Unlock()
}

var (
	opaqueMu   sync.Mutex
	opaqueNext uint32 = 1
	opaqueByID        = map[uint32]*Data{}
)

// Opacify assigns d a stable opaque id if it does not already have one, and
// returns it. The textual form is "#@" followed by four hex digits
// (spec.md §4.2).
func (d *Data) Opacify() uint32 {
	d.mu.Lock()
	if d.flags.Test(dataFlagOpaqueAssigned) {
		id := d.opaqueID
		d.mu.Unlock()
		return id
	}
	d.mu.Unlock()

	opaqueMu.Lock()
	id := opaqueNext
	opaqueNext++
	opaqueByID[id] = d
	opaqueMu.Unlock()

	d.mu.Lock()
	d.opaqueID = id
	d.flags.Set(dataFlagOpaqueAssigned)
	d.mu.Unlock()

	return id
}

// FindByOpaqueID resolves an opaque id previously returned by Opacify.
func FindByOpaqueID(id uint32) (*Data, bool) {
	opaqueMu.Lock()
	defer opaqueMu.Unlock()
	d, ok := opaqueByID[id]
	return d, ok
}

func opaqueForget(id uint32) {
	opaqueMu.Lock()
	delete(opaqueByID, id)
	opaqueMu.Unlock()
}

// RefCount exposes the live reference count for tests and diagnostics.
func (d *Data) RefCount() int32 {
	return d.ref.Count()
}
