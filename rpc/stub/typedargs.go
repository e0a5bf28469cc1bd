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

package stub

import (
	"github.com/nabbar/abinder/datatype"
	liberr "github.com/nabbar/abinder/errors"
)

// ToRawTypedArgs flattens a slice of live Data values into their wire form,
// tagging each by type name so the peer can re-hydrate through its own type
// registry regardless of how its internal type ids are numbered.
func ToRawTypedArgs(params []*datatype.Data) []RawTypedArg {
	out := make([]RawTypedArg, len(params))
	for i, d := range params {
		out[i] = RawTypedArg{Type: d.Type().Name(), Bytes: d.GetConst()}
	}
	return out
}

// FromRawTypedArgs re-hydrates wire args into live Data values, looking up
// each named type in the local registry; an unknown type name fails the
// whole conversion rather than silently dropping an argument.
func FromRawTypedArgs(args []RawTypedArg) ([]*datatype.Data, error) {
	out := make([]*datatype.Data, len(args))
	for i, a := range args {
		t, ok := datatype.Lookup(a.Type)
		if !ok {
			return nil, liberr.New(liberr.TransportFraming, "unknown type in call argument: "+a.Type)
		}
		out[i] = datatype.NewCopy(t, a.Bytes)
	}
	return out, nil
}
