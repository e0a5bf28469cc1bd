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

// Package match implements the glob matching shared by event broadcast
// (spec.md §8, pattern subscriptions) and the verb table's glob fallback
// lookup (spec.md §6.3). Patterns use '/' as the hierarchy separator between
// an API name and a verb or event name, e.g. "api/event.*".
package match

import (
	"path"
	"sort"
	"strings"
)

// Glob reports whether name satisfies pattern, using shell-style wildcards
// (*, ?, [...]) where '*' and '?' never cross a '/' boundary, mirroring
// path.Match. A malformed pattern never matches rather than erroring, since
// callers (event subscribe, verb glob lookup) treat "no match" and "bad
// pattern" identically. When caseSensitive is false both pattern and name
// are folded to lower case first.
func Glob(pattern, name string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
		name = strings.ToLower(name)
	}
	ok, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return ok
}

// Match is Glob with caseSensitive true, the common case for verb and event
// name matching.
func Match(pattern, name string) bool {
	return Glob(pattern, name, true)
}

// HasMeta reports whether pattern contains any glob metacharacter, letting
// callers route exact names through a direct map lookup instead of a linear
// glob scan (spec.md §6.3, static verb table fast path).
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// Sort orders names using simple byte ordering, so verb and event listings
// are stable and OS-independent (the teacher's socket listing otherwise
// relied on filesystem iteration order, which is not portable across test
// environments).
func Sort(names []string) {
	sort.Strings(names)
}

// Compare is the byte-wise ordering used by the binary search over the
// dynamic verb table's sorted name slice.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}
