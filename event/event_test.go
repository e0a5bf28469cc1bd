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

package event_test

import (
	"testing"

	"github.com/nabbar/abinder/datatype"
	"github.com/nabbar/abinder/event"
)

type recorder struct{ got int }

func (r *recorder) OnEvent(e *event.Event, params []*datatype.Data) { r.got++ }

func TestNew_SameNameReturnsSameEvent(t *testing.T) {
	a := event.New("topic/one")
	b := event.New("topic/one")
	if a != b {
		t.Fatalf("expected same Event instance for same name")
	}
}

func TestPush_DeliversToAllSubscribers(t *testing.T) {
	e := event.New("topic/push-test")
	r1, r2 := &recorder{}, &recorder{}
	e.Subscribe(r1)
	e.Subscribe(r2)

	e.Push(nil)

	if r1.got != 1 || r2.got != 1 {
		t.Fatalf("expected both subscribers notified once, got %d %d", r1.got, r2.got)
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	e := event.New("topic/unsub-test")
	r := &recorder{}
	e.Subscribe(r)
	e.Unsubscribe(r)

	e.Push(nil)

	if r.got != 0 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", r.got)
	}
}

func TestBroadcast_MatchesPattern(t *testing.T) {
	b := event.NewBroadcaster()
	hit := false
	b.AddHandler(&event.Handler{
		Pattern:       "topic/*",
		CaseSensitive: true,
		Notify:        func(e *event.Event, params []*datatype.Data) { hit = true },
	})

	e := event.New("topic/broadcast-test")
	b.Broadcast(e, nil)

	if !hit {
		t.Fatalf("expected handler to match and fire")
	}
}

func TestBroadcast_FallsBackToOrphan(t *testing.T) {
	b := event.NewBroadcaster()
	orphaned := ""
	b.SetOrphanHandler(func(name string, params []*datatype.Data) { orphaned = name })

	e := event.New("unmatched/event")
	b.Broadcast(e, nil)

	if orphaned != "unmatched/event" {
		t.Fatalf("expected orphan handler invoked with event name, got %q", orphaned)
	}
}
