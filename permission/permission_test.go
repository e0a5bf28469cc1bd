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

package permission_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/abinder/credential"
	"github.com/nabbar/abinder/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "permission suite")
}

type countingAuthority struct {
	calls int32
	want  permission.Decision
}

func (a *countingAuthority) Check(_ context.Context, _, _ string, _ *credential.Session, _ string) (permission.Decision, error) {
	atomic.AddInt32(&a.calls, 1)
	time.Sleep(5 * time.Millisecond)
	return a.want, nil
}

var _ = Describe("Engine.Check", func() {
	var auth *countingAuthority
	var e *permission.Engine

	BeforeEach(func() {
		auth = &countingAuthority{want: permission.Granted}
		e = permission.New(auth, time.Minute)
	})

	It("memoizes repeated checks for the same key", func() {
		for i := 0; i < 5; i++ {
			d, err := e.Check(context.Background(), "c", "u", nil, nil, "urn:x")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(permission.Granted))
		}
		Expect(atomic.LoadInt32(&auth.calls)).To(Equal(int32(1)))
	})

	It("dedups concurrent identical checks via singleflight", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = e.Check(context.Background(), "c", "u", nil, nil, "urn:y")
			}()
		}
		wg.Wait()
		Expect(atomic.LoadInt32(&auth.calls)).To(Equal(int32(1)))
	})

	It("notifies the cache observer of a miss then a hit", func() {
		var hits, misses int32
		e.SetCacheObserver(func(hit bool) {
			if hit {
				atomic.AddInt32(&hits, 1)
			} else {
				atomic.AddInt32(&misses, 1)
			}
		})

		_, _ = e.Check(context.Background(), "c", "u", nil, nil, "urn:z")
		_, _ = e.Check(context.Background(), "c", "u", nil, nil, "urn:z")

		Expect(atomic.LoadInt32(&misses)).To(Equal(int32(1)))
		Expect(atomic.LoadInt32(&hits)).To(Equal(int32(1)))
	})

	It("does not share cache entries across distinct permissions", func() {
		_, _ = e.Check(context.Background(), "c", "u", nil, nil, "urn:a")
		_, _ = e.Check(context.Background(), "c", "u", nil, nil, "urn:b")
		Expect(atomic.LoadInt32(&auth.calls)).To(Equal(int32(2)))
	})
})
