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

//go:build jsonc

package datatype

import (
	"encoding/json"

	"github.com/ugorji/go/codec"
)

// JSONC is the object-tree predefined type, only compiled in when
// json-object support is built (spec.md §4.2). It stores its payload as a
// msgpack-encoded object tree via ugorji/go/codec rather than raw text,
// since an object tree (unlike json's UTF-8 text) is meant to be walked and
// mutated node by node.
var JSONC *Type

var jsoncHandle codec.MsgpackHandle

func init() {
	JSONC = mustRegister("json-c", nil)

	Bool.RegisterConvertTo(JSONC, func(src []byte) ([]byte, error) {
		v := len(src) > 0 && src[0] != 0
		return encodeJSONC(v)
	})
	Bool.RegisterConvertFrom(JSONC, func(src []byte) ([]byte, error) {
		var v bool
		if err := decodeJSONC(src, &v); err != nil {
			return nil, err
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	})

	JSONC.RegisterConvertTo(JSON, func(src []byte) ([]byte, error) {
		var v interface{}
		if err := decodeJSONC(src, &v); err != nil {
			return nil, err
		}
		return encodeJSONText(v)
	})
}

func encodeJSONC(v interface{}) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, &jsoncHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSONC(b []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(b, &jsoncHandle)
	return dec.Decode(v)
}

// encodeJSONText renders a decoded json-c value as JSON text. Booleans and
// nil are written directly; every other value goes through encoding/json,
// which rejects the map[interface{}]interface{} nodes msgpack decodes
// objects into, so an object value returns an error.
func encodeJSONText(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case nil:
		return []byte("null"), nil
	default:
		return json.Marshal(t)
	}
}
