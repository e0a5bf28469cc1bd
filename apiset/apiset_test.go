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

package apiset_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/abinder/api"
	"github.com/nabbar/abinder/apiset"
	"github.com/nabbar/abinder/uri"
)

func TestApiset(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "apiset suite")
}

type testErr string

func (e testErr) Error() string { return string(e) }

var errTest = testErr("boom")

var _ = Describe("Set", func() {
	var s *apiset.Set

	BeforeEach(func() {
		s = apiset.New("main")
	})

	It("returns an API previously Add-ed", func() {
		a, err := api.New("greeter", "", "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Add(a)).To(Succeed())

		got, err := s.Get("greeter")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(a))
	})

	It("rejects adding the same name twice", func() {
		a, _ := api.New("greeter", "", "", nil)
		Expect(s.Add(a)).To(Succeed())
		Expect(s.Add(a)).To(HaveOccurred())
	})

	It("tries the on-lack resolver exactly once per missing name", func() {
		calls := 0
		s.SetResolver(func(name string) (*api.API, error) {
			calls++
			return nil, errTest
		})

		_, err1 := s.Get("missing")
		_, err2 := s.Get("missing")

		Expect(err1).To(HaveOccurred())
		Expect(err2).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("installs the API a successful resolver returns", func() {
		a, _ := api.New("remote", "", "", nil)
		s.SetResolver(func(name string) (*api.API, error) { return a, nil })

		got, err := s.Get("remote")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(a))
		Expect(s.Len()).To(Equal(1))
	})

	It("returns the same group mutex for the same key", func() {
		a, _ := api.New("greeter", "", "", nil)
		l1 := s.GroupLock(a)
		l2 := s.GroupLock(a)
		Expect(l1).To(BeIdenticalTo(l2))
	})
})

var _ = Describe("DirectoryResolver", func() {
	It("builds the expected uri for a directory-backed child api", func() {
		var captured *uri.URI
		resolver, err := apiset.DirectoryResolver("unix", "/tmp/sockets", func(u *uri.URI) (*api.API, error) {
			captured = u
			return api.New("child", "", "", nil)
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = resolver("child")
		Expect(err).NotTo(HaveOccurred())
		Expect(captured).NotTo(BeNil())
		Expect(captured.Protocol).To(Equal(uri.ProtocolUnix))
	})
})
