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

// Package evloop is the single-threaded cooperative event loop (spec.md
// §4.1): fds, timers and prepare-hooks multiplexed through one cycle,
// Idle → Preparing → Ready → Waiting → Pending → Dispatching → Idle.
package evloop

// FDEvents is the bitmask of readiness conditions a fd source can be
// registered for, or can report in a handler callback.
type FDEvents uint32

const (
	In FDEvents = 1 << iota
	Out
	Err
	Hup
)

// PollEvent is one readiness notification returned from a poller's Wait.
type PollEvent struct {
	FD     int
	Events FDEvents
}

// poller is the OS-specific multiplexer the loop drives during its Wait
// phase. A Linux build uses epoll plus an eventfd wakeup source
// (poller_linux.go); other platforms fall back to a portable
// channel-and-timer implementation (poller_portable.go) that supports
// timers and Wakeup but not arbitrary fd readiness, since a portable
// non-epoll/kqueue poller is out of scope here.
type poller interface {
	Add(fd int, events FDEvents) error
	Modify(fd int, events FDEvents) error
	Remove(fd int) error
	Wait(timeoutMs int) ([]PollEvent, error)
	Wakeup() error
	Close() error
}
