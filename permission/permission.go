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

// Package permission is the binder's async permission engine (spec.md
// §4.4): a Check operation memoized per (session, token, permission) triple
// and deduplicated across concurrent identical checks.
package permission

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nabbar/abinder/credential"
	"github.com/nabbar/abinder/expirecache"
)

// TokenValid is the special permission string for a request's token
// validity (spec.md §4.4). Checking it does not set a request's
// validated/invalidated flags; request.MarkValidated does, when a caller
// invokes it.
const TokenValid = "urn:AGL:token:valid"

// Decision is the outcome of a Check: Granted, Denied, or Error (the
// underlying authority could not be reached; callers must treat this as
// Denied).
type Decision int

const (
	Denied Decision = iota
	Granted
	Error
)

// Authority is the pluggable backend a Check ultimately defers to — an
// LSM/Cynara-like daemon, a static policy table, or a test double.
type Authority interface {
	Check(ctx context.Context, client, user string, session *credential.Session, permission string) (Decision, error)
}

// CacheObserver is notified of every cache lookup's outcome, letting a
// caller feed the binder's metrics.Registry without this package importing
// the prometheus client directly.
type CacheObserver func(hit bool)

// Engine is a permission Check surface with memoization and dedup layered
// in front of an Authority.
type Engine struct {
	authority Authority
	ttl       time.Duration
	cache     *expirecache.Cache[string, Decision]
	group     singleflight.Group
	observe   CacheObserver
}

// New returns an Engine backed by authority, memoizing decisions for ttl.
func New(authority Authority, ttl time.Duration) *Engine {
	return &Engine{
		authority: authority,
		ttl:       ttl,
		cache:     expirecache.New[string, Decision](ttl),
	}
}

// SetCacheObserver installs fn to be called with the hit/miss outcome of
// every Check's cache lookup.
func (e *Engine) SetCacheObserver(fn CacheObserver) {
	e.observe = fn
}

func cacheKey(sessionUUID string, tokenID uint16, permission string) string {
	return fmt.Sprintf("%s|%d|%s", sessionUUID, tokenID, permission)
}

// Check evaluates permission for the given client/user/session, memoizing
// the result and deduplicating concurrent identical checks. A negative
// status from the underlying authority (e.g. an unreachable daemon)
// surfaces as Error, which callers must translate to denial.
func (e *Engine) Check(ctx context.Context, client, user string, session *credential.Session, token *credential.Token, permission string) (Decision, error) {
	var tokenID uint16
	var sessionUUID string
	if token != nil {
		tokenID = token.ID()
	}
	if session != nil {
		sessionUUID = session.UUID
	}
	key := cacheKey(sessionUUID, tokenID, permission)

	if d, ok := e.cache.Get(key); ok {
		if e.observe != nil {
			e.observe(true)
		}
		return d, nil
	}
	if e.observe != nil {
		e.observe(false)
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		d, err := e.authority.Check(ctx, client, user, session, permission)
		if err != nil {
			return Error, err
		}
		e.cache.Set(key, d)
		return d, nil
	})
	if err != nil {
		return Error, err
	}
	return v.(Decision), nil
}

// CheckTokenValid is Check specialized to TokenValid; like every other
// check it only returns the decision and touches no request flags.
func (e *Engine) CheckTokenValid(ctx context.Context, client, user string, session *credential.Session, token *credential.Token) (Decision, error) {
	return e.Check(ctx, client, user, session, token, TokenValid)
}
