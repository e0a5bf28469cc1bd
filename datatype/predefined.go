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
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Predefined, preloaded types (spec.md §4.2). They are registered once from
// init and are never re-registered, matching the "predefined types are
// immutable" invariant.
var (
	Opaque    *Type
	ByteArray *Type
	Stringz   *Type
	JSON      *Type
	Bool      *Type
	I32       *Type
	U32       *Type
	I64       *Type
	U64       *Type
	Double    *Type
)

func init() {
	Opaque = mustRegister("opaque", nil)
	ByteArray = mustRegister("bytearray", nil)
	Stringz = mustRegister("stringz", ByteArray)
	JSON = mustRegister("json", nil)
	Bool = mustRegister("bool", nil)
	I32 = mustRegister("i32", nil)
	U32 = mustRegister("u32", nil)
	I64 = mustRegister("i64", nil)
	U64 = mustRegister("u64", nil)
	Double = mustRegister("double", nil)

	registerJSONConversions()
}

func mustRegister(name string, family *Type) *Type {
	t, err := Register(name, family)
	if err != nil {
		panic(err)
	}
	return t
}

// opaqueText renders the fixed "#@" + 4 hex digit form from spec.md §4.2,
// surrounded by double quotes when embedded in JSON.
func opaqueText(id uint32) string {
	return fmt.Sprintf("#@%04x", id&0xffff)
}

func registerJSONConversions() {
	Bool.RegisterConvertTo(JSON, func(src []byte) ([]byte, error) {
		if len(src) > 0 && src[0] != 0 {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	})
	Bool.RegisterConvertFrom(JSON, func(src []byte) ([]byte, error) {
		if gjson.ParseBytes(src).Bool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	})

	I32.RegisterConvertTo(JSON, intToJSON(32, false))
	I32.RegisterConvertFrom(JSON, jsonToInt(32, false))
	U32.RegisterConvertTo(JSON, intToJSON(32, true))
	U32.RegisterConvertFrom(JSON, jsonToInt(32, true))
	I64.RegisterConvertTo(JSON, intToJSON(64, false))
	I64.RegisterConvertFrom(JSON, jsonToInt(64, false))
	U64.RegisterConvertTo(JSON, intToJSON(64, true))
	U64.RegisterConvertFrom(JSON, jsonToInt(64, true))

	Double.RegisterConvertTo(JSON, func(src []byte) ([]byte, error) {
		f := math.Float64frombits(binary.LittleEndian.Uint64(src))
		return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
	})
	Double.RegisterConvertFrom(JSON, func(src []byte) ([]byte, error) {
		f := gjson.ParseBytes(src).Float()
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		return b, nil
	})

	Stringz.RegisterConvertTo(JSON, func(src []byte) ([]byte, error) {
		return []byte(strconv.Quote(string(src))), nil
	})
	Stringz.RegisterConvertFrom(JSON, func(src []byte) ([]byte, error) {
		return []byte(gjson.ParseBytes(src).String()), nil
	})
}

func intToJSON(bits int, unsigned bool) ConvertFunc {
	return func(src []byte) ([]byte, error) {
		var s string
		switch {
		case bits == 32 && !unsigned:
			s = strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(src))), 10)
		case bits == 32 && unsigned:
			s = strconv.FormatUint(uint64(binary.LittleEndian.Uint32(src)), 10)
		case bits == 64 && !unsigned:
			s = strconv.FormatInt(int64(binary.LittleEndian.Uint64(src)), 10)
		default:
			s = strconv.FormatUint(binary.LittleEndian.Uint64(src), 10)
		}
		return []byte(s), nil
	}
}

func jsonToInt(bits int, unsigned bool) ConvertFunc {
	return func(src []byte) ([]byte, error) {
		r := gjson.ParseBytes(src)
		if bits == 32 {
			b := make([]byte, 4)
			if unsigned {
				binary.LittleEndian.PutUint32(b, uint32(r.Uint()))
			} else {
				binary.LittleEndian.PutUint32(b, uint32(int32(r.Int())))
			}
			return b, nil
		}
		b := make([]byte, 8)
		if unsigned {
			binary.LittleEndian.PutUint64(b, r.Uint())
		} else {
			binary.LittleEndian.PutUint64(b, uint64(r.Int()))
		}
		return b, nil
	}
}

// PrettyJSON pretty-prints a json-typed Data's payload, exercising the
// sjson/pretty leg of the datatype→JSON wiring the numeric conversions
// above don't need.
func PrettyJSON(d *Data) ([]byte, error) {
	if d.Type() != JSON {
		return nil, fmt.Errorf("not a json data: %s", d.Type().Name())
	}
	return pretty.Pretty(d.GetConst()), nil
}

// SetJSONField mutates a json-typed Data in place at path, using sjson so
// callers never need to round-trip through a generic map.
func SetJSONField(d *Data, path string, value interface{}) error {
	if d.Type() != JSON {
		return fmt.Errorf("not a json data: %s", d.Type().Name())
	}
	out, err := sjson.SetBytes(d.GetConst(), path, value)
	if err != nil {
		return err
	}

	mut, err := d.GetMutable()
	if err != nil {
		// the Data is constant; replace its bytes wholesale instead of
		// failing, since SetJSONField is explicitly a mutation request.
		d.mu.Lock()
		d.bytes = out
		d.mu.Unlock()
		d.NotifyChanged()
		return nil
	}

	if len(out) != len(mut) {
		d.mu.Lock()
		d.bytes = out
		d.mu.Unlock()
	} else {
		copy(mut, out)
	}
	d.NotifyChanged()
	return nil
}
