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

package datatype_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/abinder/datatype"
)

func TestData_RefcountStartsAtOne(t *testing.T) {
	d := datatype.NewAlloc(datatype.ByteArray, 4)
	require.EqualValues(t, 1, d.RefCount())
}

func TestData_AddRefUnref(t *testing.T) {
	d := datatype.NewAlloc(datatype.ByteArray, 4)
	d.AddRef()
	require.EqualValues(t, 2, d.RefCount())
	require.NoError(t, d.Unref())
	require.EqualValues(t, 1, d.RefCount())
}

func TestData_DisposerRunsOnLastUnref(t *testing.T) {
	disposed := false
	d := datatype.NewRaw(datatype.ByteArray, []byte("x"), func(b []byte) { disposed = true })
	require.NoError(t, d.Unref())
	require.True(t, disposed)
}

func TestData_ConstantRejectsMutation(t *testing.T) {
	d := datatype.NewAlloc(datatype.ByteArray, 4)
	d.SetConstant()
	_, err := d.GetMutable()
	require.Error(t, err)
}

func TestData_StringzAliasesByteArray(t *testing.T) {
	d := datatype.NewCopy(datatype.Stringz, []byte("hello"))
	out, err := d.Convert(datatype.ByteArray)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out.GetConst()))
}

func TestData_I32ToJSON(t *testing.T) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(int32(-42)))
	d := datatype.NewRaw(datatype.I32, b, nil)

	out, err := d.Convert(datatype.JSON)
	require.NoError(t, err)
	require.Equal(t, "-42", string(out.GetConst()))
}

func TestData_JSONToI32(t *testing.T) {
	d := datatype.NewCopy(datatype.JSON, []byte("42"))
	out, err := d.Convert(datatype.I32)
	require.NoError(t, err)
	require.EqualValues(t, 42, int32(binary.LittleEndian.Uint32(out.GetConst())))
}

func TestData_BoolToJSON(t *testing.T) {
	d := datatype.NewRaw(datatype.Bool, []byte{1}, nil)
	out, err := d.Convert(datatype.JSON)
	require.NoError(t, err)
	require.Equal(t, "true", string(out.GetConst()))
}

func TestData_OpaqueToJSON(t *testing.T) {
	d := datatype.NewRaw(datatype.Opaque, []byte{0xde, 0xad}, nil)
	out, err := d.Convert(datatype.JSON)
	require.NoError(t, err)
	require.Regexp(t, `^"#@[0-9a-f]{4}"$`, string(out.GetConst()))
}

func TestData_OpaqueRoundTripsThroughJSON(t *testing.T) {
	d := datatype.NewRaw(datatype.Opaque, []byte{0xde, 0xad}, nil)
	asJSON, err := d.Convert(datatype.JSON)
	require.NoError(t, err)

	back, err := asJSON.Convert(datatype.Opaque)
	require.NoError(t, err)
	require.Same(t, d, back)
}

func TestData_OpaqueRoundTripsThroughStringz(t *testing.T) {
	d := datatype.NewRaw(datatype.Opaque, []byte{0xbe, 0xef}, nil)
	asStr, err := d.Convert(datatype.Stringz)
	require.NoError(t, err)

	back, err := asStr.Convert(datatype.Opaque)
	require.NoError(t, err)
	require.Same(t, d, back)
}

func TestData_NoConversionPath(t *testing.T) {
	// double has no registered path to bytearray in either direction, and
	// they share no family relation, so the search must exhaust all four
	// layers and fail.
	b := make([]byte, 8)
	d := datatype.NewRaw(datatype.Double, b, nil)
	_, err := d.Convert(datatype.ByteArray)
	require.Error(t, err)
}

func TestRegister_DuplicateNameFails(t *testing.T) {
	_, err := datatype.Register("bytearray", nil)
	require.Error(t, err)
}

func TestData_AddDependencyKeepsParentAlive(t *testing.T) {
	parent := datatype.NewAlloc(datatype.ByteArray, 1)
	child := datatype.NewAlloc(datatype.ByteArray, 1)
	child.AddDependency(parent)

	require.EqualValues(t, 2, parent.RefCount())
	require.NoError(t, child.Unref())
	require.EqualValues(t, 1, parent.RefCount())
}
