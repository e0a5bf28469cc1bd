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
	"strconv"

	liberr "github.com/nabbar/abinder/errors"
)

// Convert locates a conversion path from d's type to dst and returns a new
// Data of type dst holding the result. The search tries, in order, the
// direct, fast-indirect-forward, fast-indirect-backward and long-indirect
// layers described in spec.md §4.2, stopping at the first success.
//
// opaque is handled outside that byte-level graph: it is an identity, not a
// value, so converting into it must return the very Data reference that was
// opacified, and converting out of it must opacify the Data being converted
// rather than a disposable copy (spec.md §8 invariant 4).
func (d *Data) Convert(dst *Type) (*Data, error) {
	if b, ok := tryOpaqueConvert(d, dst); ok {
		return b, nil
	}

	b, err := convertBytes(d, dst)
	if err != nil {
		return nil, err
	}
	return NewRaw(dst, b, nil), nil
}

// tryOpaqueConvert implements the opaque leg of the conversion graph that
// the byte-oriented ConvertFunc registry cannot express.
func tryOpaqueConvert(d *Data, dst *Type) (*Data, bool) {
	if d.typ == Opaque {
		switch dst {
		case JSON:
			id := d.Opacify()
			return NewRaw(JSON, []byte(strconv.Quote(opaqueText(id))), nil), true
		case Stringz:
			id := d.Opacify()
			return NewRaw(Stringz, []byte(opaqueText(id)), nil), true
		}
		return nil, false
	}

	if dst != Opaque {
		return nil, false
	}

	var text string
	switch d.typ {
	case JSON:
		s, err := strconv.Unquote(string(d.GetConst()))
		if err != nil {
			return nil, false
		}
		text = s
	case Stringz:
		text = string(d.GetConst())
	default:
		return nil, false
	}

	id, ok := parseOpaqueText(text)
	if !ok {
		return nil, false
	}
	existing, found := FindByOpaqueID(id)
	if !found {
		return nil, false
	}
	return existing.AddRef(), true
}

// parseOpaqueText parses the "#@xxxx" form produced by opaqueText.
func parseOpaqueText(s string) (uint32, bool) {
	if len(s) != 6 || s[0] != '#' || s[1] != '@' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// UpdateTo mirrors Convert but writes into a preallocated Data instead of
// allocating one.
func (d *Data) UpdateTo(dst *Data) error {
	if fn := updateFunc(d.typ, dst.typ); fn != nil {
		return fn(d.GetConst(), dst)
	}
	b, err := convertBytes(d, dst.typ)
	if err != nil {
		return err
	}
	mut, err := dst.GetMutable()
	if err != nil {
		return err
	}
	copy(mut, b)
	return nil
}

func updateFunc(from, to *Type) UpdateFunc {
	if o := from.opsFor(to); o != nil && o.updTo != nil {
		return o.updTo
	}
	if o := to.opsFor(from); o != nil && o.updFrom != nil {
		return o.updFrom
	}
	return nil
}

func convertBytes(d *Data, dst *Type) ([]byte, error) {
	src := d.typ
	raw := d.GetConst()

	if b, ok := tryDirect(src, dst, raw); ok {
		return b, nil
	}
	if b, ok := tryForwardMiddle(src, dst, raw); ok {
		return b, nil
	}
	if b, ok := tryBackwardMiddle(src, dst, raw); ok {
		return b, nil
	}
	if b, ok := tryLongIndirect(src, dst, raw); ok {
		return b, nil
	}
	return nil, liberr.New(liberr.ResNotFound, "no conversion path from "+src.name+" to "+dst.name)
}

// tryDirect walks F's family chain upward, trying forward Convert_To(T)
// then reverse Convert_From(ancestor) on T; if T is an ancestor of F and
// nothing matched, the bytes alias directly.
func tryDirect(src, dst *Type, raw []byte) ([]byte, bool) {
	for _, a := range src.familyChain() {
		if o := a.opsFor(dst); o != nil && o.to != nil {
			if b, err := o.to(raw); err == nil {
				return b, true
			}
		}
		if o := dst.opsFor(a); o != nil && o.from != nil {
			if b, err := o.from(raw); err == nil {
				return b, true
			}
		}
	}
	if dst.isAncestorOf(src) {
		return raw, true
	}
	return nil, false
}

// tryForwardMiddle tries, for each F-ancestor's Convert_To(M), whether T can
// consume M (T.Convert_From(M) or M.Convert_To(T)), running the two-step
// conversion.
func tryForwardMiddle(src, dst *Type, raw []byte) ([]byte, bool) {
	for _, a := range src.familyChain() {
		a.mu.RLock()
		candidates := make([]uint16, 0, len(a.ops))
		for mid, o := range a.ops {
			if o.to != nil {
				candidates = append(candidates, mid)
			}
		}
		a.mu.RUnlock()

		for _, mid := range candidates {
			m, ok := ByID(mid)
			if !ok || m == dst {
				continue
			}
			mid1, err := a.opsFor(m).to(raw)
			if err != nil {
				continue
			}
			if o := dst.opsFor(m); o != nil && o.from != nil {
				if b, err := o.from(mid1); err == nil {
					return b, true
				}
			}
			if o := m.opsFor(dst); o != nil && o.to != nil {
				if b, err := o.to(mid1); err == nil {
					return b, true
				}
			}
		}
	}
	return nil, false
}

// tryBackwardMiddle is the symmetric search starting from T's
// Convert_From(M) entries.
func tryBackwardMiddle(src, dst *Type, raw []byte) ([]byte, bool) {
	dst.mu.RLock()
	candidates := make([]uint16, 0, len(dst.ops))
	for mid, o := range dst.ops {
		if o.from != nil {
			candidates = append(candidates, mid)
		}
	}
	dst.mu.RUnlock()

	for _, mid := range candidates {
		m, ok := ByID(mid)
		if !ok || m == src {
			continue
		}
		var mid1 []byte
		var produced bool
		if o := src.opsFor(m); o != nil && o.to != nil {
			if b, err := o.to(raw); err == nil {
				mid1, produced = b, true
			}
		}
		if !produced {
			if o := m.opsFor(src); o != nil && o.from != nil {
				if b, err := o.from(raw); err == nil {
					mid1, produced = b, true
				}
			}
		}
		if !produced {
			continue
		}
		if b, err := dst.opsFor(m).from(mid1); err == nil {
			return b, true
		}
	}
	return nil, false
}

// tryLongIndirect scans every registered type as a candidate middle M,
// requiring M to both consume F and produce T.
func tryLongIndirect(src, dst *Type, raw []byte) ([]byte, bool) {
	for _, m := range All() {
		if m == src || m == dst {
			continue
		}
		var mid1 []byte
		var produced bool
		if o := m.opsFor(src); o != nil && o.from != nil {
			if b, err := o.from(raw); err == nil {
				mid1, produced = b, true
			}
		}
		if !produced {
			continue
		}
		if o := m.opsFor(dst); o != nil && o.to != nil {
			if b, err := o.to(mid1); err == nil {
				return b, true
			}
		}
	}
	return nil, false
}
