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

package evloop

import (
	"sort"
	"sync"
	"time"

	"github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/logger"
)

// State is one phase of the loop's single cycle (spec.md §4.1).
type State uint8

const (
	Idle State = iota
	Preparing
	Ready
	Waiting
	Pending
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case Ready:
		return "ready"
	case Waiting:
		return "waiting"
	case Pending:
		return "pending"
	case Dispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

// FDHandler is invoked for readiness on a registered fd. autoclose reports
// whether the loop already removed and closed the fd because of a Hup with
// no In bit left to drain (spec.md §4.1's auto-close-on-hangup rule).
type FDHandler func(fd int, events FDEvents, autoclose bool)

// PrepareHook runs once at the start of every cycle's Preparing phase,
// before the poll timeout is computed, so it can register/arm fds and
// timers for this pass.
type PrepareHook func()

// CycleObserver is notified after every completed cycle with its wall-clock
// duration and the number of fds currently registered, letting a caller
// feed the binder's metrics.Registry without this package depending on it.
type CycleObserver func(duration time.Duration, registeredFDs int)

type fdSource struct {
	fd      int
	events  FDEvents
	handler FDHandler
	closer  func() error
}

type timerSource struct {
	id        uint64
	next      time.Time
	accuracy  time.Duration
	period    time.Duration // 0 means one-shot
	remaining uint32        // shots left including the one about to fire; 0 means unlimited
	fn        func(decount uint32)
}

// firedTimer pairs an expired timerSource with the decount it fired at,
// since remaining is mutated in place before dispatch runs.
type firedTimer struct {
	t       *timerSource
	decount uint32
}

// Loop is the single-threaded cooperative event loop described in spec.md
// §4.1: one goroutine drives fds, timers and prepare hooks through the
// Idle → Preparing → Ready → Waiting → Pending → Dispatching → Idle cycle.
// It is not safe to call Run concurrently, but AddFD/AddTimer/AddPrepare/
// Wakeup may be called from any goroutine.
type Loop struct {
	log logger.Logger

	mu       sync.Mutex
	state    State
	p        poller
	fds      map[int]*fdSource
	timers   map[uint64]*timerSource
	prepares []PrepareHook
	nextTID  uint64
	stop     bool
	observe  CycleObserver
}

// New creates a Loop backed by the platform poller (epoll+eventfd on Linux,
// a portable timer-and-wakeup fallback elsewhere).
func New(log logger.Logger) (*Loop, error) {
	p, err := newPoller()
	if err != nil {
		return nil, errors.New(errors.ResAllocFailed, "cannot create event loop poller", err)
	}
	return &Loop{
		log:    log,
		state:  Idle,
		p:      p,
		fds:    make(map[int]*fdSource),
		timers: make(map[uint64]*timerSource),
	}, nil
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// AddFD registers fd for events, with closer invoked if the loop ever
// auto-closes it on hangup (may be nil).
func (l *Loop) AddFD(fd int, events FDEvents, handler FDHandler, closer func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.p.Add(fd, events); err != nil {
		return errors.New(errors.ResAllocFailed, "cannot register fd with poller", err)
	}
	l.fds[fd] = &fdSource{fd: fd, events: events, handler: handler, closer: closer}
	return nil
}

// ModifyFD changes the registered interest set for fd.
func (l *Loop) ModifyFD(fd int, events FDEvents) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.fds[fd]
	if !ok {
		return errors.New(errors.ResNotFound, "fd not registered with loop")
	}
	if err := l.p.Modify(fd, events); err != nil {
		return errors.New(errors.ResAllocFailed, "cannot modify fd registration", err)
	}
	src.events = events
	return nil
}

// RemoveFD unregisters fd without closing it.
func (l *Loop) RemoveFD(fd int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeFDLocked(fd)
}

func (l *Loop) removeFDLocked(fd int) error {
	if _, ok := l.fds[fd]; !ok {
		return nil
	}
	delete(l.fds, fd)
	return l.p.Remove(fd)
}

// AddTimer arms a one-shot (period == 0) or repeating timer. accuracy
// widens the deadline's acceptable overlap window per spec.md §4.1: the
// loop computes the next wakeup as the intersection of
// [next, next+accuracy] across all armed timers, letting it coalesce
// nearby deadlines into a single Wait call.
//
// count is the total number of shots the timer carries before it
// auto_unrefs itself; fn is invoked with the remaining decount on every
// firing, counting down to 1 on the last call. count == 0 means the timer
// repeats indefinitely (fn always sees decount 0) as long as period > 0;
// a one-shot timer (period == 0) always fires exactly once regardless of
// the count given.
func (l *Loop) AddTimer(delay, accuracy, period time.Duration, count uint32, fn func(decount uint32)) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if period == 0 && count == 0 {
		count = 1
	}

	l.nextTID++
	id := l.nextTID
	l.timers[id] = &timerSource{
		id:        id,
		next:      time.Now().Add(delay),
		accuracy:  accuracy,
		period:    period,
		remaining: count,
		fn:        fn,
	}
	return id
}

// RemoveTimer disarms a timer previously returned by AddTimer.
func (l *Loop) RemoveTimer(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.timers, id)
}

// AddPrepare registers a hook run at the start of every cycle.
func (l *Loop) AddPrepare(hook PrepareHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prepares = append(l.prepares, hook)
}

// SetCycleObserver installs fn to be called after every completed cycle.
func (l *Loop) SetCycleObserver(fn CycleObserver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observe = fn
}

// Wakeup interrupts a blocked Wait, forcing an early cycle; safe to call
// from any goroutine, including from within a dispatched handler.
func (l *Loop) Wakeup() error {
	return l.p.Wakeup()
}

// Stop requests Run to return after completing its current cycle.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stop = true
	l.mu.Unlock()
	_ = l.p.Wakeup()
}

// Close releases the underlying poller. Run must not be in progress.
func (l *Loop) Close() error {
	return l.p.Close()
}

// Run drives the cycle until Stop is called or an unrecoverable poller
// error occurs.
func (l *Loop) Run() error {
	for {
		l.mu.Lock()
		stop := l.stop
		l.mu.Unlock()
		if stop {
			l.setState(Idle)
			return nil
		}

		if err := l.cycle(); err != nil {
			return err
		}
	}
}

// cycle runs exactly one Idle→...→Idle pass.
func (l *Loop) cycle() error {
	started := time.Now()
	l.setState(Preparing)
	l.mu.Lock()
	hooks := make([]PrepareHook, len(l.prepares))
	copy(hooks, l.prepares)
	l.mu.Unlock()
	for _, h := range hooks {
		h()
	}

	l.setState(Ready)
	timeout := l.nextTimeout()

	l.setState(Waiting)
	events, err := l.p.Wait(timeout)
	if err != nil {
		return errors.New(errors.TransportHangup, "event loop poller wait failed", err)
	}

	l.setState(Pending)
	expired := l.expiredTimers()

	l.setState(Dispatching)
	l.dispatchFDs(events)
	l.dispatchTimers(expired)

	l.setState(Idle)

	l.mu.Lock()
	observe, fdCount := l.observe, len(l.fds)
	l.mu.Unlock()
	if observe != nil {
		observe(time.Since(started), fdCount)
	}

	return nil
}

// nextTimeout computes the poll timeout in ms as the latest timer deadline
// that still lies inside every armed timer's [next, next+accuracy] window
// it overlaps, so nearby deadlines share one wakeup; it returns -1 to
// block indefinitely when no timer is armed and at least one fd is
// registered, and 200 when neither is, so the loop still notices Stop
// promptly.
func (l *Loop) nextTimeout() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.timers) == 0 {
		if len(l.fds) == 0 {
			return 200
		}
		return -1
	}

	now := time.Now()
	var end time.Time
	first := true
	for _, t := range l.timers {
		if e := t.next.Add(t.accuracy); first || e.Before(end) {
			end = e
			first = false
		}
	}
	var start time.Time
	for _, t := range l.timers {
		if !t.next.After(end) && t.next.After(start) {
			start = t.next
		}
	}

	d := start.Sub(now)
	if d < 0 {
		return 0
	}
	return int(d.Milliseconds())
}

func (l *Loop) expiredTimers() []firedTimer {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	out := make([]firedTimer, 0)
	for _, t := range l.timers {
		if !t.next.After(now) {
			decount := t.remaining
			out = append(out, firedTimer{t: t, decount: decount})

			freed := false
			if t.remaining > 0 {
				t.remaining--
				if t.remaining == 0 {
					freed = true
				}
			}
			if !freed && t.period > 0 {
				t.next = now.Add(t.period)
			} else {
				delete(l.timers, t.id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].t.next.Before(out[j].t.next) })
	return out
}

func (l *Loop) dispatchTimers(expired []firedTimer) {
	for _, f := range expired {
		if f.t.fn != nil {
			f.t.fn(f.decount)
		}
	}
}

// dispatchFDs hands off at most one ready fd per cycle, per spec.md §4.1's
// reentrancy-avoidance rule; any other fds still ready are simply seen
// again on the next cycle's poll.
func (l *Loop) dispatchFDs(events []PollEvent) {
	if len(events) == 0 {
		return
	}
	ev := events[0]

	l.mu.Lock()
	src, ok := l.fds[ev.FD]
	l.mu.Unlock()
	if !ok {
		return
	}

	autoclose := false
	if ev.Events&Hup != 0 && ev.Events&In == 0 {
		autoclose = true
		l.mu.Lock()
		_ = l.removeFDLocked(ev.FD)
		l.mu.Unlock()
		if src.closer != nil {
			if err := src.closer(); err != nil && l.log != nil {
				l.log.Warning("evloop: auto-close on hangup failed", "fd", ev.FD, "error", err)
			}
		}
	}

	if src.handler != nil {
		src.handler(ev.FD, ev.Events, autoclose)
	}
}
