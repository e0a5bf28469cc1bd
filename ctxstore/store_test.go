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

package ctxstore_test

import (
	"context"
	"testing"

	"github.com/nabbar/abinder/ctxstore"
)

func TestStore_StoreLoad(t *testing.T) {
	s := ctxstore.New[string, int](context.Background())
	s.Store("a", 1)

	v, ok := s.Load("a")
	if !ok || v != 1 {
		t.Fatalf("expected (1,true), got (%d,%v)", v, ok)
	}
}

func TestStore_LoadOrStore(t *testing.T) {
	s := ctxstore.New[string, int](context.Background())

	v, loaded := s.LoadOrStore("a", 1)
	if loaded || v != 1 {
		t.Fatalf("expected fresh store, got (%d,%v)", v, loaded)
	}

	v, loaded = s.LoadOrStore("a", 2)
	if !loaded || v != 1 {
		t.Fatalf("expected existing value preserved, got (%d,%v)", v, loaded)
	}
}

func TestStore_LoadAndDelete(t *testing.T) {
	s := ctxstore.New[string, int](context.Background())
	s.Store("a", 1)

	v, ok := s.LoadAndDelete("a")
	if !ok || v != 1 {
		t.Fatalf("expected (1,true), got (%d,%v)", v, ok)
	}
	if _, ok := s.Load("a"); ok {
		t.Fatalf("expected key removed after LoadAndDelete")
	}
}

func TestStore_CloneIsIndependent(t *testing.T) {
	s := ctxstore.New[string, int](context.Background())
	s.Store("a", 1)

	c := s.Clone(context.Background())
	c.Store("a", 2)

	v, _ := s.Load("a")
	if v != 1 {
		t.Fatalf("expected original store unaffected by clone mutation, got %d", v)
	}
}

func TestStore_Merge(t *testing.T) {
	dst := ctxstore.New[string, int](context.Background())
	dst.Store("a", 1)

	src := ctxstore.New[string, int](context.Background())
	src.Store("a", 2)
	src.Store("b", 3)

	dst.Merge(src)

	if v, _ := dst.Load("a"); v != 2 {
		t.Fatalf("expected src to win on collision, got %d", v)
	}
	if v, _ := dst.Load("b"); v != 3 {
		t.Fatalf("expected new key copied, got %d", v)
	}
}

func TestStore_Walk_EarlyExit(t *testing.T) {
	s := ctxstore.New[int, int](context.Background())
	for i := 0; i < 10; i++ {
		s.Store(i, i)
	}

	seen := 0
	s.Walk(func(key int, val int) bool {
		seen++
		return seen < 3
	})

	if seen != 3 {
		t.Fatalf("expected walk to stop after 3 entries, saw %d", seen)
	}
}
