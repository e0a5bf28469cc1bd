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
	"fmt"
	"strconv"
	"strings"
	"sync"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/refcount"
)

// OnBehalfPermission is the fixed permission string guarding an on-behalf
// credentials import, carried verbatim from the original implementation's
// credential handling.
const OnBehalfPermission = "urn:AGL:permission:*:partner:on-behalf-credentials"

// Credentials holds the identity a request executes as: uid/gid/pid, an
// optional label (e.g. an LSM/SMACK label) and a per-import id.
type Credentials struct {
	ref refcount.Counter

	mu    sync.RWMutex
	UID   int
	GID   int
	PID   int
	Label string
	ID    string
}

// New returns a Credentials starting with one live reference.
func New(uid, gid, pid int, label, id string) *Credentials {
	c := &Credentials{UID: uid, GID: gid, PID: pid, Label: label, ID: id}
	c.ref.Init(1)
	return c
}

func (c *Credentials) AddRef() *Credentials {
	c.ref.Hold()
	return c
}

func (c *Credentials) Unref() error {
	if n := c.ref.Drop(); n < 0 {
		return liberr.New(liberr.ProgDoubleReply, "double unref on credentials")
	}
	return nil
}

// Export renders the textual "hex-uid:hex-gid:hex-pid-label" form from
// spec.md §4.3.
func (c *Credentials) Export() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%x:%x:%x-%s", c.UID, c.GID, c.PID, c.Label)
}

// Import parses the Export form back into a Credentials, used both for a
// query-time wire credential and for an on-behalf re-keying (which the
// caller must separately gate on OnBehalfPermission).
func Import(s string) (*Credentials, error) {
	first := strings.SplitN(s, ":", 3)
	if len(first) != 3 {
		return nil, liberr.New(liberr.ArgInvalidValue, "malformed credentials export form: "+s)
	}
	uid, err := strconv.ParseInt(first[0], 16, 64)
	if err != nil {
		return nil, liberr.New(liberr.ArgInvalidValue, "malformed uid: "+first[0], err)
	}
	gid, err := strconv.ParseInt(first[1], 16, 64)
	if err != nil {
		return nil, liberr.New(liberr.ArgInvalidValue, "malformed gid: "+first[1], err)
	}
	pidLabel := strings.SplitN(first[2], "-", 2)
	pid, err := strconv.ParseInt(pidLabel[0], 16, 64)
	if err != nil {
		return nil, liberr.New(liberr.ArgInvalidValue, "malformed pid: "+pidLabel[0], err)
	}
	label := ""
	if len(pidLabel) == 2 {
		label = pidLabel[1]
	}
	return New(int(uid), int(gid), int(pid), label, ""), nil
}
