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

package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabbar/abinder/match"
)

func TestMatch_Table(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"api/event.*", "api/event.up", true},
		{"api/event.*", "api/other.up", false},
		{"api/*", "api/event/up", false}, // '*' does not cross the '/' separator
		{"api/**", "api/event/up", false},
		{"*", "event.up", true},
		{"evt?", "evt1", true},
		{"evt?", "evt12", false},
		{"[a-c]pi", "api", true},
		{"[a-c]*", "bpi", true},
	}

	for _, c := range cases {
		assert.Equalf(t, c.want, match.Match(c.pattern, c.name), "Match(%q,%q)", c.pattern, c.name)
	}
}

func TestGlob_CaseInsensitive(t *testing.T) {
	assert.False(t, match.Glob("API/*", "api/event.up", true), "expected case-sensitive Glob to reject differing case")
	assert.True(t, match.Glob("API/*", "api/event.up", false), "expected case-insensitive Glob to match")
}

func TestMatch_BadPatternNeverMatches(t *testing.T) {
	require.False(t, match.Match("[", "x"), "expected malformed pattern to never match")
}

func TestHasMeta(t *testing.T) {
	assert.True(t, match.HasMeta("api/*"))
	assert.False(t, match.HasMeta("api/event.up"))
}

func TestSort_IsStableByteOrder(t *testing.T) {
	in := []string{"b", "a", "c"}
	match.Sort(in)
	assert.Equal(t, []string{"a", "b", "c"}, in)
}
