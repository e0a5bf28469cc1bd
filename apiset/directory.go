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

package apiset

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/nabbar/abinder/api"
	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/uri"
)

// Connector opens a client stub for the given parsed URI and wraps it into
// an API; the rpc/wrapper package supplies the real implementation, kept
// out of this package to avoid a transport dependency in the registry.
type Connector func(u *uri.URI) (*api.API, error)

// DirectoryResolver builds a Resolver implementing spec.md §4.5's
// auto-import pattern: on an unknown name, it attempts to open
// "scheme:basedir/<name>" and wrap it as a client RPC stub; success
// installs the API under name.
func DirectoryResolver(scheme, baseDir string, connect Connector) (Resolver, error) {
	expanded, err := homedir.Expand(baseDir)
	if err != nil {
		return nil, liberr.New(liberr.ArgInvalidValue, "cannot expand directory apiset base dir: "+baseDir, err)
	}

	return func(name string) (*api.API, error) {
		raw := scheme + ":" + filepath.Join(expanded, name) + "?as-api=" + name
		u, err := uri.Parse(raw)
		if err != nil {
			return nil, liberr.New(liberr.ArgInvalidURI, "directory apiset built an invalid uri for "+name, err)
		}
		a, err := connect(u)
		if err != nil {
			return nil, err
		}
		if a.Name == "" {
			a.Name = name
		}
		return a, nil
	}, nil
}
