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

// Package uri parses the binder's socket scheme grammar (spec.md §4.9/§6.3):
// `[ws+|tls+|mtls+]scheme:host-or-path[?opt=val&...]`, plus the client-side
// `wss://`, `ws://`, `https://`, `http://` aliases.
package uri

import (
	"net/url"
	"strconv"
	"strings"

	liberr "github.com/nabbar/abinder/errors"
)

// Protocol is the underlying socket family a scheme resolves to.
type Protocol uint8

const (
	// ProtocolTCP is the default protocol when no scheme prefix is given.
	ProtocolTCP Protocol = iota
	ProtocolUnix
	ProtocolSystemd
	ProtocolVsock
	ProtocolChar
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolUnix:
		return "unix"
	case ProtocolSystemd:
		return "sd"
	case ProtocolVsock:
		return "l4vsock"
	case ProtocolChar:
		return "char"
	default:
		return "unknown"
	}
}

// URI is a parsed binder socket endpoint.
type URI struct {
	Protocol Protocol

	// WS, TLS, MTLS are the composable RPC-family wrapper prefixes. TLS is
	// implied true whenever MTLS is true.
	WS   bool
	TLS  bool
	MTLS bool

	// Host and Port apply to ProtocolTCP and ProtocolVsock.
	Host string
	Port string

	// Path applies to ProtocolUnix (filesystem path, or abstract name when
	// Abstract is true) and ProtocolChar (device node path).
	Path     string
	Abstract bool

	// FD applies to ProtocolSystemd: the systemd LISTEN_FDS index, or -1 if
	// the URI named the socket by name instead (query opt "fd-name").
	FD int

	// APIs is the comma-separated list of API names advertised on this
	// socket, taken from a trailing "/name1,name2" path segment or from the
	// "as-api" query option, in that precedence order.
	APIs []string

	Query url.Values
}

// clientAliases map a client-facing scheme straight to wrapper bits: unlike
// the explicit "ws+"/"tls+" composition grammar, "wss://" legitimately means
// both WS framing and TLS transport security at once, so these bypass the
// ws+/tls+ mutual-exclusion rule entirely.
var clientAliases = map[string]wrapBits{
	"wss":   {ws: true, tls: true},
	"ws":    {ws: true},
	"https": {tls: true},
	"http":  {},
}

// Parse parses raw per spec.md §4.9. An empty scheme prefix defaults to tcp.
func Parse(raw string) (*URI, error) {
	s := raw
	var alias *wrapBits

	if idx := strings.Index(s, "://"); idx >= 0 {
		name := strings.ToLower(s[:idx])
		if w, ok := clientAliases[name]; ok {
			alias = &w
			s = "tcp:" + s[idx+3:]
		}
	}

	composed, rest, ok := splitScheme(s)
	if !ok {
		return nil, liberr.New(liberr.ArgInvalidURI, "missing scheme in uri: "+raw)
	}

	u := &URI{FD: -1}

	var wrap wrapBits
	if alias != nil {
		wrap = *alias
		u.Protocol = ProtocolTCP
	} else {
		proto, w, err := parseComposedScheme(composed)
		if err != nil {
			return nil, err
		}
		u.Protocol = proto
		wrap = w
	}
	u.WS = wrap.ws
	u.TLS = wrap.tls || wrap.mtls
	u.MTLS = wrap.mtls

	body, query := splitQuery(rest)
	u.Query = query

	if err := parseBody(u, body); err != nil {
		return nil, err
	}

	if len(u.APIs) == 0 {
		if name := query.Get("as-api"); name != "" {
			u.APIs = strings.Split(name, ",")
		}
	}

	return u, nil
}

type wrapBits struct {
	ws, tls, mtls bool
}

// parseComposedScheme splits a scheme like "mtls+tcp" or "ws+unix" into its
// wrapper bits and base protocol. tls+ and ws+ are mutually exclusive per
// spec.md §4.9; mtls+ carries the same restriction since it implies tls+.
func parseComposedScheme(s string) (Protocol, wrapBits, error) {
	var w wrapBits
	parts := strings.Split(s, "+")
	base := parts[len(parts)-1]

	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ws":
			w.ws = true
		case "tls":
			w.tls = true
		case "mtls":
			w.mtls = true
		default:
			return 0, w, liberr.New(liberr.ArgInvalidURI, "unknown wrapper prefix: "+p)
		}
	}
	if w.ws && (w.tls || w.mtls) {
		return 0, w, liberr.New(liberr.ArgInvalidURI, "ws+ and tls+/mtls+ are mutually exclusive")
	}

	switch base {
	case "", "tcp":
		return ProtocolTCP, w, nil
	case "unix":
		return ProtocolUnix, w, nil
	case "sd":
		return ProtocolSystemd, w, nil
	case "l4vsock":
		return ProtocolVsock, w, nil
	case "char":
		return ProtocolChar, w, nil
	default:
		return 0, w, liberr.New(liberr.ArgInvalidURI, "unknown scheme: "+base)
	}
}

// splitScheme returns the colon-delimited scheme prefix (possibly composed
// with '+') and the remainder of the URI.
func splitScheme(s string) (scheme string, rest string, ok bool) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func splitQuery(s string) (body string, q url.Values) {
	if idx := strings.Index(s, "?"); idx >= 0 {
		vals, err := url.ParseQuery(s[idx+1:])
		if err != nil {
			vals = url.Values{}
		}
		return s[:idx], vals
	}
	return s, url.Values{}
}

func parseBody(u *URI, body string) error {
	switch u.Protocol {
	case ProtocolTCP, ProtocolVsock:
		host, port, apis := splitTrailingAPIs(body)
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			u.Host, u.Port = host[:idx], host[idx+1:]
		} else {
			u.Host = host
			u.Port = port
		}
		if _, err := strconv.Atoi(u.Port); u.Port != "" && err != nil {
			return liberr.New(liberr.ArgInvalidURI, "invalid port: "+u.Port)
		}
		u.APIs = append(u.APIs, apis...)
	case ProtocolUnix, ProtocolChar:
		path, apis := splitTrailingAPIsOnSlash(body)
		if strings.HasPrefix(path, "@") {
			u.Abstract = true
		}
		u.Path = path
		u.APIs = append(u.APIs, apis...)
	case ProtocolSystemd:
		name, apis := splitTrailingAPIsOnSlash(body)
		if n, err := strconv.Atoi(name); err == nil {
			u.FD = n
		} else {
			u.Path = name
		}
		u.APIs = append(u.APIs, apis...)
	}
	return nil
}

// splitTrailingAPIs splits "host:port/api1,api2" into host:port and the API
// list, without disturbing a bare "host:port".
func splitTrailingAPIs(s string) (head string, port string, apis []string) {
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[:idx], "", strings.Split(s[idx+1:], ",")
	}
	return s, "", nil
}

// splitTrailingAPIsOnSlash separates a trailing comma-separated API list
// from a unix/char path or systemd fd name. A unix socket path is itself
// slash-delimited and its last segment is ordinarily the socket's own file
// name, so only a trailing segment containing a comma is unambiguous enough
// to treat as an API list; a lone name after the last '/' is left as part
// of the path and must instead be named via "?as-api=" if needed.
func splitTrailingAPIsOnSlash(s string) (path string, apis []string) {
	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return s, nil
	}
	tail := s[idx+1:]
	if !strings.Contains(tail, ",") {
		return s, nil
	}
	return s[:idx], strings.Split(tail, ",")
}

func (u *URI) String() string {
	var b strings.Builder
	if u.WS {
		b.WriteString("ws+")
	}
	if u.MTLS {
		b.WriteString("mtls+")
	} else if u.TLS {
		b.WriteString("tls+")
	}
	b.WriteString(u.Protocol.String())
	b.WriteString(":")
	switch u.Protocol {
	case ProtocolTCP, ProtocolVsock:
		b.WriteString(u.Host)
		if u.Port != "" {
			b.WriteString(":")
			b.WriteString(u.Port)
		}
	case ProtocolUnix, ProtocolChar:
		b.WriteString(u.Path)
	case ProtocolSystemd:
		if u.Path != "" {
			b.WriteString(u.Path)
		} else {
			b.WriteString(strconv.Itoa(u.FD))
		}
	}
	return b.String()
}
