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

package credential

import (
	"sync"
	"time"

	hcuuid "github.com/hashicorp/go-uuid"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/expirecache"
	"github.com/nabbar/abinder/refcount"
)

// MaxLOA is the highest level of assurance a session may carry for any
// given api-cookie-key (spec.md §4.3).
const MaxLOA = 7

// Session is a per-client state bag: a LOA per api-cookie-key, an arbitrary
// cookie per key, and an expiry. The session registry drops a session once
// its expiry has passed, whatever its refcount; a live reference does not
// keep an expired session registered.
type Session struct {
	ref refcount.Counter

	UUID string

	mu      sync.RWMutex
	loa     map[string]uint8
	cookies map[string]interface{}
	expiry  time.Time
}

func newSession(uuid string, timeout time.Duration) *Session {
	s := &Session{
		UUID:    uuid,
		loa:     make(map[string]uint8),
		cookies: make(map[string]interface{}),
		expiry:  time.Now().Add(timeout),
	}
	s.ref.Init(1)
	return s
}

func (s *Session) AddRef() *Session {
	s.ref.Hold()
	return s
}

// Unref releases a reference. It does not touch the registry: a session
// stays registered until its expiry passes, whether or not references
// remain, and Unref never expires a session still within its timeout.
func (s *Session) Unref() error {
	if n := s.ref.Drop(); n < 0 {
		return liberr.New(liberr.ProgDoubleReply, "double unref on session "+s.UUID)
	}
	return nil
}

// Expired reports whether s is past its expiry deadline.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().After(s.expiry)
}

// Extend pushes the expiry deadline forward by timeout from now.
func (s *Session) Extend(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry = time.Now().Add(timeout)
}

// LOA returns the level of assurance recorded for key, or 0 if unset.
func (s *Session) LOA(key string) uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loa[key]
}

// SetLOA records a level of assurance for key; level must be in [0,7].
func (s *Session) SetLOA(key string, level uint8) error {
	if level > MaxLOA {
		return liberr.New(liberr.ArgInvalidLOA, "loa exceeds maximum of 7")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loa[key] = level
	return nil
}

// Cookie returns the cookie stored for key.
func (s *Session) Cookie(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cookies[key]
	return v, ok
}

// SetCookie stores an arbitrary value under key.
func (s *Session) SetCookie(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[key] = value
}

var (
	sessionMu sync.Mutex
	sessions  = expirecache.New[string, *Session](30 * time.Minute)
)

// Get resolves uuid to its Session, creating one if it does not already
// exist (or has expired). If uuid is empty a fresh random one is minted via
// hashicorp/go-uuid. created reports whether a new Session was made.
func Get(uuid string, timeout time.Duration) (s *Session, created bool, err error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if uuid != "" {
		if existing, ok := sessions.Get(uuid); ok {
			existing.AddRef()
			return existing, false, nil
		}
	} else {
		uuid, err = hcuuid.GenerateUUID()
		if err != nil {
			return nil, false, liberr.New(liberr.ResAllocFailed, "failed to generate session uuid", err)
		}
	}

	s = newSession(uuid, timeout)
	sessions.SetExpiry(uuid, s, s.expiry)
	return s, true, nil
}

// Purge evicts every expired session, returning how many were removed. The
// refcount is not consulted, so an expired session is evicted even while
// references to it remain. Nothing in this module calls Purge on a
// schedule; without a call, expired sessions are only dropped when Get
// looks them up.
func Purge() int {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	return sessions.Purge()
}
