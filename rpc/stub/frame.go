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

// Package stub is the RPC coder (spec.md §4.7/§6.2): a self-framed binary
// protocol turning requests/replies/events into wire frames and back.
package stub

import (
	"encoding/binary"

	liberr "github.com/nabbar/abinder/errors"
)

// Kind discriminates a Frame's payload.
type Kind uint32

const (
	KindVersionOffer Kind = iota
	KindVersionSelect
	KindCall
	KindReply
	KindEvent
	KindSubscribe
	KindUnsubscribe
	KindEventBroadcast
	KindSessionSet
	KindTokenSet
	KindCredentialsSet
	KindGoodbye
)

// headerSize is kind(4) + length(4) + id(4), exactly spec.md §6.2's frame
// shape.
const headerSize = 12

// Frame is one self-framed wire unit.
type Frame struct {
	Kind Kind
	ID   uint32
	Body []byte
}

// Encode renders f as kind|length|id|body, big-endian.
func Encode(f Frame) []byte {
	out := make([]byte, headerSize+len(f.Body))
	binary.BigEndian.PutUint32(out[0:4], uint32(f.Kind))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(f.Body)))
	binary.BigEndian.PutUint32(out[8:12], f.ID)
	copy(out[headerSize:], f.Body)
	return out
}

// Decode consumes at most one frame from buf, returning the frame, the
// number of bytes consumed, and ok=false if buf does not yet hold a
// complete frame ("need more" per spec.md §4.7 receive() contract).
func Decode(buf []byte) (f Frame, consumed int, ok bool, err error) {
	if len(buf) < headerSize {
		return Frame{}, 0, false, nil
	}
	kind := Kind(binary.BigEndian.Uint32(buf[0:4]))
	length := binary.BigEndian.Uint32(buf[4:8])
	id := binary.BigEndian.Uint32(buf[8:12])

	if length > 64<<20 {
		return Frame{}, 0, false, liberr.New(liberr.TransportFraming, "frame body exceeds sane size limit")
	}
	total := headerSize + int(length)
	if len(buf) < total {
		return Frame{}, 0, false, nil
	}

	body := make([]byte, length)
	copy(body, buf[headerSize:total])
	return Frame{Kind: kind, ID: id, Body: body}, total, true, nil
}
