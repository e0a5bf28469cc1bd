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

// Package credential is Session, Token and Credentials (spec.md §4.3).
package credential

import "sync"

// Token is an interned string handed out with a small numeric id; equal
// names always share one entry.
type Token struct {
	id   uint16
	name string
}

func (t *Token) ID() uint16    { return t.id }
func (t *Token) Name() string  { return t.name }
func (t *Token) String() string { return t.name }

var (
	tokenMu     sync.Mutex
	tokenByName = map[string]*Token{}
	tokenByID   []*Token
)

// Intern returns the Token for name, creating it on first use.
func Intern(name string) *Token {
	tokenMu.Lock()
	defer tokenMu.Unlock()

	if t, ok := tokenByName[name]; ok {
		return t
	}
	t := &Token{id: uint16(len(tokenByID)), name: name}
	tokenByID = append(tokenByID, t)
	tokenByName[name] = t
	return t
}

// LookupToken resolves a previously interned Token by its numeric id.
func LookupToken(id uint16) (*Token, bool) {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	if int(id) >= len(tokenByID) {
		return nil, false
	}
	return tokenByID[id], true
}
