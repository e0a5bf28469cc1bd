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

package stub

import (
	"strings"

	"github.com/hashicorp/go-version"

	liberr "github.com/nabbar/abinder/errors"
)

// SupportedVersions is this stub's offer, highest-capability last in the
// source list but sorted before use; callers needing to negotiate a
// different set can call Negotiate directly.
var SupportedVersions = []string{"1.0.0", "1.1.0", "2.0.0"}

// EncodeVersionOffer renders a newline-joined version list for a
// KindVersionOffer frame body.
func EncodeVersionOffer(versions []string) []byte {
	return []byte(strings.Join(versions, "\n"))
}

func DecodeVersionOffer(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	return strings.Split(string(body), "\n")
}

// Negotiate picks the highest version mutually present in local and
// remote, using version.Collection.Sort() to order candidates per
// spec.md §4.7.
func Negotiate(local, remote []string) (string, error) {
	remoteSet := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		remoteSet[r] = struct{}{}
	}

	var mutual version.Collection
	for _, l := range local {
		if _, ok := remoteSet[l]; !ok {
			continue
		}
		v, err := version.NewVersion(l)
		if err != nil {
			continue
		}
		mutual = append(mutual, v)
	}
	if len(mutual) == 0 {
		return "", liberr.New(liberr.TransportVersionMismatch, "no mutually supported wire version")
	}
	mutual.Sort()
	return mutual[len(mutual)-1].Original(), nil
}
