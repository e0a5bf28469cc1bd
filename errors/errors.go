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
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c      CodeError
	msg    string
	parent []Error
	trace  string
}

func capture(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func (o *ers) Error() string {
	if o.trace != "" {
		return fmt.Sprintf("[%d] %s (%s)", o.c, o.msg, o.trace)
	}
	return fmt.Sprintf("[%d] %s", o.c, o.msg)
}

func (o *ers) IsCode(code CodeError) bool {
	return o.c == code
}

func (o *ers) HasCode(code CodeError) bool {
	if o.c == code {
		return true
	}
	for _, p := range o.parent {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (o *ers) GetCode() CodeError {
	return o.c
}

func (o *ers) HasParent() bool {
	return len(o.parent) > 0
}

func (o *ers) GetParent(withMainError bool) []error {
	out := make([]error, 0, len(o.parent)+1)
	if withMainError {
		out = append(out, o)
	}
	for _, p := range o.parent {
		out = append(out, p)
	}
	return out
}

func (o *ers) Map(fct FuncMap) bool {
	if !fct(o) {
		return false
	}
	for _, p := range o.parent {
		if !p.Map(fct) {
			return false
		}
	}
	return true
}

func (o *ers) Add(parent ...error) {
	o.parent = append(o.parent, wrapAll(parent)...)
}

func (o *ers) SetParent(parent ...error) {
	o.parent = wrapAll(parent)
}

func (o *ers) GetTrace() string {
	return o.trace
}

func (o *ers) Unwrap() []error {
	return o.GetParent(false)
}

// ContainsString reports whether the receiver's or any parent's message
// contains s.
func ContainsString(e error, s string) bool {
	if e == nil {
		return false
	}
	if err := Get(e); err != nil {
		found := false
		err.Map(func(x error) bool {
			if strings.Contains(x.Error(), s) {
				found = true
				return false
			}
			return true
		})
		return found
	}
	return strings.Contains(e.Error(), s)
}
