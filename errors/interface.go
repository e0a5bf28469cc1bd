/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

import (
	"errors"
	"fmt"
)

// FuncMap iterates over an error chain; return false to stop early.
type FuncMap func(e error) bool

// Error extends the standard error with a numeric code, parent chain and
// call-site trace. Add/SetParent are not safe for concurrent modification;
// all other methods are safe for concurrent reads.
type Error interface {
	error

	// IsCode reports whether the error's own code matches.
	IsCode(code CodeError) bool
	// HasCode reports whether the error or any parent matches.
	HasCode(code CodeError) bool
	// GetCode returns the error's own code.
	GetCode() CodeError

	// HasParent reports whether any parent error is attached.
	HasParent() bool
	// GetParent returns the parent chain, optionally including the receiver.
	GetParent(withMainError bool) []error
	// Map walks the receiver then every parent, depth first, until fct
	// returns false.
	Map(fct FuncMap) bool

	// Add attaches non-nil errors as parents of the receiver.
	Add(parent ...error)
	// SetParent replaces the whole parent list.
	SetParent(parent ...error)

	// GetTrace returns "file:line" for the receiver's capture site.
	GetTrace() string

	// Unwrap supports errors.Is / errors.As.
	Unwrap() []error
}

// Is reports whether e can be treated as an Error.
func Is(e error) bool {
	var err Error
	return errors.As(e, &err)
}

// Get extracts the Error interface from e, or returns nil.
func Get(e error) Error {
	var err Error
	if errors.As(e, &err) {
		return err
	}
	return nil
}

// Has reports whether e or any of its parents carries code.
func Has(e error, code CodeError) bool {
	if err := Get(e); err != nil {
		return err.HasCode(code)
	}
	return false
}

// Make wraps a plain error into an Error, tagging it with code 0 if it
// wasn't already one.
func Make(e error) Error {
	if e == nil {
		return nil
	}
	if err := Get(e); err != nil {
		return err
	}
	return &ers{c: Unset, msg: e.Error(), trace: capture(1)}
}

// New creates an Error with the given code, message and optional parents.
func New(code CodeError, message string, parent ...error) Error {
	return &ers{c: code, msg: message, parent: wrapAll(parent), trace: capture(1)}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code CodeError, pattern string, args ...interface{}) Error {
	return &ers{c: code, msg: fmt.Sprintf(pattern, args...), trace: capture(1)}
}

// IfError returns nil unless at least one parent is non-nil, in which case
// it wraps them all under code/message. Useful at the end of a function
// that accumulated optional errors along the way.
func IfError(code CodeError, message string, parent ...error) Error {
	p := wrapAll(parent)
	if len(p) == 0 {
		return nil
	}
	return &ers{c: code, msg: message, parent: p, trace: capture(1)}
}

func wrapAll(parent []error) []Error {
	if len(parent) == 0 {
		return nil
	}
	out := make([]Error, 0, len(parent))
	for _, e := range parent {
		if e == nil {
			continue
		}
		out = append(out, Make(e))
	}
	return out
}
