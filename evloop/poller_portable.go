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

//go:build !linux

package evloop

import (
	"sync"
	"time"
)

// portablePoller is the non-Linux fallback: it has no way to learn fd
// readiness without a syscall-level multiplexer, so Add/Modify/Remove are
// bookkeeping only and Wait always blocks on Wakeup or its timeout, leaving
// fd readiness detection to whatever called Wakeup after doing its own I/O.
// Timers and prepare hooks, which do not need fd readiness, work normally.
type portablePoller struct {
	mu    sync.Mutex
	woken chan struct{}
}

func newPoller() (poller, error) {
	return &portablePoller{woken: make(chan struct{}, 1)}, nil
}

func (p *portablePoller) Add(fd int, events FDEvents) error    { return nil }
func (p *portablePoller) Modify(fd int, events FDEvents) error { return nil }
func (p *portablePoller) Remove(fd int) error                  { return nil }

func (p *portablePoller) Wait(timeoutMs int) ([]PollEvent, error) {
	if timeoutMs < 0 {
		<-p.woken
		return nil, nil
	}
	select {
	case <-p.woken:
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
	}
	return nil, nil
}

func (p *portablePoller) Wakeup() error {
	select {
	case p.woken <- struct{}{}:
	default:
	}
	return nil
}

func (p *portablePoller) Close() error { return nil }
