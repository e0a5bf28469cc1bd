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

package evloop_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nabbar/abinder/evloop"
	"github.com/nabbar/abinder/logger"
)

func newTestLoop(t *testing.T) *evloop.Loop {
	t.Helper()
	l, err := evloop.New(logger.New())
	if err != nil {
		t.Fatalf("evloop.New: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoop_TimerFires(t *testing.T) {
	l := newTestLoop(t)
	var fired int32
	l.AddTimer(10*time.Millisecond, time.Millisecond, 0, 1, func(decount uint32) {
		atomic.AddInt32(&fired, 1)
	})

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fired) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("expected timer to fire exactly once, got %d", fired)
	}
}

func TestLoop_PeriodicTimerRepeats(t *testing.T) {
	l := newTestLoop(t)
	var count int32
	l.AddTimer(5*time.Millisecond, time.Millisecond, 5*time.Millisecond, 0, func(decount uint32) {
		atomic.AddInt32(&count, 1)
	})

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&count) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	<-done
	if atomic.LoadInt32(&count) < 3 {
		t.Fatalf("expected periodic timer to fire at least 3 times, got %d", count)
	}
}

func TestLoop_PrepareHookRunsEveryCycle(t *testing.T) {
	l := newTestLoop(t)
	var runs int32
	l.AddPrepare(func() { atomic.AddInt32(&runs, 1) })
	l.AddTimer(2*time.Millisecond, time.Millisecond, 2*time.Millisecond, 0, func(decount uint32) {})

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	<-done
	if atomic.LoadInt32(&runs) < 3 {
		t.Fatalf("expected prepare hook to run repeatedly, got %d", runs)
	}
}

func TestLoop_WakeupUnblocksWait(t *testing.T) {
	l := newTestLoop(t)

	var wg sync.WaitGroup
	wg.Add(1)
	start := time.Now()
	go func() {
		defer wg.Done()
		l.Stop()
	}()

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	wg.Wait()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return promptly after Stop")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("loop took too long to notice Stop")
	}
}

func TestLoop_CycleObserverSeesEachCycle(t *testing.T) {
	l := newTestLoop(t)
	var cycles int32
	l.SetCycleObserver(func(d time.Duration, fds int) {
		atomic.AddInt32(&cycles, 1)
	})
	l.AddTimer(2*time.Millisecond, time.Millisecond, 2*time.Millisecond, 0, func(decount uint32) {})

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&cycles) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	<-done
	if atomic.LoadInt32(&cycles) < 3 {
		t.Fatalf("expected cycle observer to run repeatedly, got %d", cycles)
	}
}

func TestLoop_ShotCountTimerFreesAfterDecountReachesZero(t *testing.T) {
	l := newTestLoop(t)
	var mu sync.Mutex
	var decounts []uint32

	l.AddTimer(10*time.Millisecond, time.Millisecond, 10*time.Millisecond, 3, func(decount uint32) {
		mu.Lock()
		decounts = append(decounts, decount)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	deadline := time.Now().Add(40 * time.Millisecond)
	for time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()
	<-done

	mu.Lock()
	got := append([]uint32(nil), decounts...)
	mu.Unlock()

	if len(got) != 3 {
		t.Fatalf("expected exactly 3 firings, got %d: %v", len(got), got)
	}
	want := []uint32{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected decounts %v, got %v", want, got)
		}
	}
}

func TestLoop_StateStartsIdle(t *testing.T) {
	l := newTestLoop(t)
	if l.State() != evloop.Idle {
		t.Fatalf("expected initial state Idle, got %v", l.State())
	}
}
