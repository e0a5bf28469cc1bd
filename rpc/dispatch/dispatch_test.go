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

package dispatch_test

import (
	"testing"

	"github.com/nabbar/abinder/api"
	"github.com/nabbar/abinder/apiset"
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/request"
	"github.com/nabbar/abinder/rpc/dispatch"
	"github.com/nabbar/abinder/rpc/stub"
)

func TestBind_RoutesCallToVerbAndReplies(t *testing.T) {
	a, err := api.New("greeter", "", "", nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	var gotVerb string
	err = a.AddStaticVerb(&api.Verb{
		Name: "hello",
		Auth: auth.YesAuth(),
		Callback: func(r *request.Request, closure interface{}) {
			gotVerb = r.Verb
			r.Reply(0, nil)
		},
	})
	if err != nil {
		t.Fatalf("AddStaticVerb: %v", err)
	}

	set := apiset.New("test")
	if err := set.Add(a); err != nil {
		t.Fatalf("set.Add: %v", err)
	}

	var outFrame []byte
	s := stub.New(func(frame []byte) { outFrame = append(outFrame, frame...) })
	dispatch.Bind(s, set, nil, nil)

	callBody, err := stub.EncodeCBOR(stub.CallPayload{API: "greeter", Verb: "hello"})
	if err != nil {
		t.Fatalf("EncodeCBOR: %v", err)
	}
	frame := stub.Encode(stub.Frame{Kind: stub.KindCall, ID: 1, Body: callBody})

	if _, err := s.Receive(frame); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if gotVerb != "hello" {
		t.Fatalf("expected verb callback to see verb %q, got %q", "hello", gotVerb)
	}

	replyFrame, _, ok, err := stub.Decode(outFrame)
	if err != nil || !ok {
		t.Fatalf("expected a decodable reply frame: ok=%v err=%v", ok, err)
	}
	if replyFrame.Kind != stub.KindReply {
		t.Fatalf("expected a KindReply frame, got %v", replyFrame.Kind)
	}
	var reply stub.ReplyPayload
	if err := stub.DecodeCBOR(replyFrame.Body, &reply); err != nil {
		t.Fatalf("DecodeCBOR: %v", err)
	}
	if reply.Status != 0 {
		t.Fatalf("expected status 0, got %d", reply.Status)
	}
}

func TestBind_UnknownAPIRepliesError(t *testing.T) {
	set := apiset.New("test")

	var outFrame []byte
	s := stub.New(func(frame []byte) { outFrame = append(outFrame, frame...) })
	dispatch.Bind(s, set, nil, nil)

	callBody, err := stub.EncodeCBOR(stub.CallPayload{API: "missing", Verb: "hello"})
	if err != nil {
		t.Fatalf("EncodeCBOR: %v", err)
	}
	frame := stub.Encode(stub.Frame{Kind: stub.KindCall, ID: 2, Body: callBody})

	if _, err := s.Receive(frame); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	replyFrame, _, ok, err := stub.Decode(outFrame)
	if err != nil || !ok {
		t.Fatalf("expected a decodable reply frame: ok=%v err=%v", ok, err)
	}
	var reply stub.ReplyPayload
	if err := stub.DecodeCBOR(replyFrame.Body, &reply); err != nil {
		t.Fatalf("DecodeCBOR: %v", err)
	}
	if reply.Status != -1 {
		t.Fatalf("expected status -1 for an unknown api, got %d", reply.Status)
	}
}
