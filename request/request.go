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

// Package request is the common request entity (spec.md §3, §4.5): api
// name, verb name, params, session/token/credentials, idempotent reply,
// subscribe/unsubscribe, per-api cookie and user data.
package request

import (
	"sync"

	"github.com/nabbar/abinder/credential"
	"github.com/nabbar/abinder/datatype"
	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/event"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/refcount"
)

// Flags is the bitset of lifecycle flags spec.md §3 attaches to a request.
type Flags uint8

const (
	Validated Flags = 1 << iota
	Invalidated
	Closing
	Closed
	Created
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// ReplyFunc delivers a reply through whichever query interface received
// the original request (local caller or RPC stub).
type ReplyFunc func(status int32, params []*datatype.Data)

// Request is the per-call state bag threaded through the verb pipeline.
// Reply is idempotent (spec.md §4.5): a second call is ignored and logged.
type Request struct {
	ref refcount.Counter

	API  string
	Verb string

	mu     sync.Mutex
	params []*datatype.Data

	Session     *credential.Session
	Token       *credential.Token
	Credentials *credential.Credentials

	flags Flags

	subs   map[*event.Event]struct{}
	cookie map[string]interface{}
	user   interface{}

	deliver ReplyFunc
	replied bool

	log logger.Logger
}

// New creates a Request carrying one live reference. deliver is invoked at
// most once, by Reply.
func New(api, verb string, params []*datatype.Data, session *credential.Session, token *credential.Token, creds *credential.Credentials, deliver ReplyFunc, log logger.Logger) *Request {
	r := &Request{
		API:         api,
		Verb:        verb,
		params:      params,
		Session:     session,
		Token:       token,
		Credentials: creds,
		flags:       Created,
		subs:        make(map[*event.Event]struct{}),
		cookie:      make(map[string]interface{}),
		deliver:     deliver,
		log:         log,
	}
	r.ref.Init(1)
	return r
}

func (r *Request) AddRef() *Request {
	r.ref.Hold()
	return r
}

// Unref releases a reference; once the flags reach Closed the only
// remaining legal operation on a Request is Unref itself.
func (r *Request) Unref() error {
	if n := r.ref.Drop(); n < 0 {
		return liberr.New(liberr.ProgDoubleReply, "double unref on request "+r.API+"/"+r.Verb)
	}
	return nil
}

func (r *Request) Params() []*datatype.Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*datatype.Data, len(r.params))
	copy(out, r.params)
	return out
}

func (r *Request) Flags() Flags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flags
}

func (r *Request) setFlag(bit Flags) {
	r.mu.Lock()
	r.flags |= bit
	r.mu.Unlock()
}

// MarkValidated records the outcome of the urn:AGL:token:valid permission
// check: a positive result sets Validated and a negative one sets
// Invalidated. The permission and auth packages neither call it nor read
// these flags, so a recorded outcome does not short-circuit later checks.
func (r *Request) MarkValidated(ok bool) {
	if ok {
		r.setFlag(Validated)
	} else {
		r.setFlag(Invalidated)
	}
}

// Cookie returns the value stored for key in this request's per-api cookie
// bag (spec.md §3's "cookie for the current api").
func (r *Request) Cookie(key string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cookie[key]
	return v, ok
}

func (r *Request) SetCookie(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cookie[key] = value
}

func (r *Request) UserData() interface{}     { return r.user }
func (r *Request) SetUserData(v interface{}) { r.user = v }

// Subscribe attaches this request as a subscriber of e; Reply does not
// implicitly unsubscribe, and neither does any teardown in this module; the
// verb callback must call Unsubscribe explicitly.
func (r *Request) Subscribe(e *event.Event, sub event.Subscriber) {
	r.mu.Lock()
	r.subs[e] = struct{}{}
	r.mu.Unlock()
	e.Subscribe(sub)
}

func (r *Request) Unsubscribe(e *event.Event, sub event.Subscriber) {
	r.mu.Lock()
	delete(r.subs, e)
	r.mu.Unlock()
	e.Unsubscribe(sub)
}

// Subscriptions returns a snapshot of the events this request is currently
// subscribed to.
func (r *Request) Subscriptions() []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*event.Event, 0, len(r.subs))
	for e := range r.subs {
		out = append(out, e)
	}
	return out
}

// Reply delivers the terminal status/params exactly once; a second call is
// ignored and logged as a warning (spec.md §4.5).
func (r *Request) Reply(status int32, params []*datatype.Data) {
	r.mu.Lock()
	if r.replied {
		r.mu.Unlock()
		if r.log != nil {
			r.log.Warning("request: duplicate reply ignored", "api", r.API, "verb", r.Verb)
		}
		return
	}
	r.replied = true
	r.flags |= Closing
	deliver := r.deliver
	r.mu.Unlock()

	if deliver != nil {
		deliver(status, params)
	}

	r.setFlag(Closed)
}

// Replied reports whether Reply has already been called.
func (r *Request) Replied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replied
}
