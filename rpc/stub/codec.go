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
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pierrec/lz4/v4"

	liberr "github.com/nabbar/abinder/errors"
)

// CallPayload is the cbor-encoded body of a KindCall frame.
type CallPayload struct {
	API    string        `cbor:"api"`
	Verb   string        `cbor:"verb"`
	Params []RawTypedArg `cbor:"params"`
}

// ReplyPayload is the cbor-encoded body of a KindReply frame.
type ReplyPayload struct {
	Status int32         `cbor:"status"`
	Params []RawTypedArg `cbor:"params"`
}

// EventPayload is the cbor-encoded body of a KindEvent frame.
type EventPayload struct {
	Name   string        `cbor:"name"`
	Params []RawTypedArg `cbor:"params"`
}

// SubscribePayload is the cbor-encoded body of a KindSubscribe or
// KindUnsubscribe frame: the peer asks to start/stop receiving broadcasts
// of the named event.
type SubscribePayload struct {
	Event string `cbor:"event"`
}

// EventBroadcastPayload is the cbor-encoded body of a KindEventBroadcast
// frame: a glob-matched broadcast relayed to every stub subscribed to it,
// as opposed to KindEvent's request-scoped push.
type EventBroadcastPayload struct {
	Name   string        `cbor:"name"`
	Params []RawTypedArg `cbor:"params"`
}

// SessionSetPayload is the cbor-encoded body of a KindSessionSet frame,
// binding the connection to a session uuid; TimeoutSeconds of 0 asks for
// DefaultSessionTimeout.
type SessionSetPayload struct {
	UUID           string `cbor:"uuid"`
	TimeoutSeconds uint32 `cbor:"timeout_seconds"`
}

// TokenSetPayload is the cbor-encoded body of a KindTokenSet frame.
type TokenSetPayload struct {
	Name string `cbor:"name"`
}

// CredentialsSetPayload is the cbor-encoded body of a KindCredentialsSet
// frame, carrying the same on-behalf-of export string credential.Export
// produces.
type CredentialsSetPayload struct {
	Export string `cbor:"export"`
}

// RawTypedArg carries one datatype.Data's wire representation: the type
// name it was encoded under and its raw bytes, letting the receiving side
// re-hydrate through its own type registry rather than assuming the peer's
// internal type ids line up with its own.
type RawTypedArg struct {
	Type  string `cbor:"type"`
	Bytes []byte `cbor:"bytes"`
}

// EncodeCBOR marshals v with the default cbor settings, compact-map mode.
func EncodeCBOR(v interface{}) ([]byte, error) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return nil, liberr.New(liberr.TransportFraming, "cbor encode failed", err)
	}
	return b, nil
}

// DecodeCBOR unmarshals body into v.
func DecodeCBOR(body []byte, v interface{}) error {
	if err := cbor.Unmarshal(body, v); err != nil {
		return liberr.New(liberr.TransportFraming, "cbor decode failed", err)
	}
	return nil
}

// CompressLZ4 compresses body. The stub neither negotiates compression nor
// applies it: frames are always sent with uncompressed bodies.
func CompressLZ4(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, liberr.New(liberr.TransportFraming, "lz4 compress failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, liberr.New(liberr.TransportFraming, "lz4 compress close failed", err)
	}
	return buf.Bytes(), nil
}

// DecompressLZ4 reverses CompressLZ4.
func DecompressLZ4(body []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(body))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, liberr.New(liberr.TransportFraming, "lz4 decompress failed", err)
	}
	return out, nil
}
