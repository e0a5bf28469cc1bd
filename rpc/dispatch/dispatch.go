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

// Package dispatch is the transport-agnostic bridge between a wire-level
// Stub and the named apiset's verb table: it is the one piece common to
// every transport wrapper's server side, whether the frames arrive over a
// raw FD, a websocket upgrade, or any future Wrapper mode.
package dispatch

import (
	"context"

	"github.com/nabbar/abinder/api"
	"github.com/nabbar/abinder/apiset"
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/datatype"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/request"
	"github.com/nabbar/abinder/rpc/stub"
)

// Bind wires s's inbound calls to set: each KindCall frame resolves to a
// named API, becomes a Request dispatched through that API's verb table,
// and the verb's Reply flows back out as the matching KindReply frame. An
// unresolved API or an argument that fails to rehydrate replies status -1
// without ever reaching the verb table.
func Bind(s *stub.Stub, set *apiset.Set, checker auth.Checker, log logger.Logger) {
	s.SetCallHandler(func(id uint32, p stub.CallPayload) {
		a, err := set.Get(p.API)
		if err != nil {
			_ = s.Reply(id, stub.ReplyPayload{Status: -1})
			return
		}

		params, err := stub.FromRawTypedArgs(p.Params)
		if err != nil {
			_ = s.Reply(id, stub.ReplyPayload{Status: -1})
			return
		}

		deliver := func(status int32, out []*datatype.Data) {
			_ = s.Reply(id, stub.ReplyPayload{Status: status, Params: stub.ToRawTypedArgs(out)})
		}

		r := request.New(a.Name, p.Verb, params, s.Session, s.Token, s.Credentials, deliver, log)
		dispatchVerb(a, p.Verb, r, checker, log)
	})
}

func dispatchVerb(a *api.API, verb string, r *request.Request, checker auth.Checker, log logger.Logger) {
	if err := a.Dispatch(context.Background(), verb, r, checker); err != nil && log != nil {
		log.Info("dispatch: verb call failed", "api", a.Name, "verb", verb, "error", err)
	}
}
