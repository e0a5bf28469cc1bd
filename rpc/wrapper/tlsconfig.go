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

package wrapper

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/uri"
)

// TLSConfigFromURI resolves a *tls.Config from a parsed URI's query
// arguments (spec.md §4.8): host=, cert=, key=, trust=, falling back to the
// system trust store when trust= is absent. mutual is true for MutualTls
// mode, requiring cert=/key= to be set.
func TLSConfigFromURI(u *uri.URI, mutual bool) (*tls.Config, error) {
	cfg := &tls.Config{ServerName: u.Query.Get("host")}
	if cfg.ServerName == "" {
		cfg.ServerName = u.Host
	}

	if trust := u.Query.Get("trust"); trust != "" {
		pool := x509.NewCertPool()
		pem, err := os.ReadFile(trust)
		if err != nil {
			return nil, liberr.New(liberr.ArgInvalidValue, "cannot read trust store: "+trust, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, liberr.New(liberr.ArgInvalidValue, "trust store contains no usable certificates: "+trust)
		}
		cfg.RootCAs = pool
	}

	certPath, keyPath := u.Query.Get("cert"), u.Query.Get("key")
	if mutual {
		if certPath == "" || keyPath == "" {
			return nil, liberr.New(liberr.ArgInvalidValue, "mutual tls requires both cert= and key=")
		}
	}
	if certPath != "" && keyPath != "" {
		pair, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, liberr.New(liberr.ArgInvalidValue, "cannot load cert/key pair", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	return cfg, nil
}
