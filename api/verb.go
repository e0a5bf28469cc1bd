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

// Package api is the binding ABI's API and verb table (spec.md §4.5/§6.1):
// name validation, verb matching, seal, control callbacks and classes.
package api

import (
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/request"
)

// VerbCallback is invoked once a request's verb has matched and its auth
// tree has been satisfied.
type VerbCallback func(r *request.Request, closure interface{})

// Verb is one entry of an API's verb table (spec.md §3). Glob marks Name as
// an fnmatch-style pattern rather than a literal.
type Verb struct {
	Name     string
	Callback VerbCallback
	Closure  interface{}
	Auth     *auth.Node
	LOAKey   auth.LOAKey
	Glob     bool
	Info     string
}
