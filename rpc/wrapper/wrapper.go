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

// Package wrapper is the binder's transport wrapper (spec.md §4.8): one
// wrapper owns exactly one rpc/stub.Stub and drains its frames onto a
// net.Conn, TLS session or websocket connection, with optional reconnect.
package wrapper

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"

	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/rpc/stub"
)

// Mode is the bitmask of a Wrapper's transport behaviour.
type Mode uint8

const (
	FD Mode = 1 << iota
	Tls
	MutualTls
	WebSocket
	Server
)

func (m Mode) Has(bit Mode) bool { return m&bit != 0 }

// Reopener returns a fresh connection when a robustified Wrapper needs to
// reconnect after a hangup; a nil return with no error is treated as "not
// ready yet, retry later".
type Reopener func() (net.Conn, error)

// Wrapper owns one Stub and moves its frames to/from a transport. FD and
// Tls/MutualTls modes share the net.Conn path; WebSocket frames whole
// messages through a *websocket.Conn instead.
type Wrapper struct {
	mode Mode
	log  logger.Logger
	Stub *stub.Stub

	mu      sync.Mutex
	conn    net.Conn
	ws      *websocket.Conn
	buf     []byte
	closed  bool
	dropped bool // true mid-callback, guards against use-after-free on a concurrent Close

	reopen   Reopener
	attempt  int
	minDelay time.Duration
	maxDelay time.Duration
}

// NewFD wraps conn in FD mode (optionally also Tls/MutualTls, which share
// the same net.Conn framing once the TLS handshake has already happened at
// dial time).
func NewFD(conn net.Conn, mode Mode, log logger.Logger) *Wrapper {
	w := &Wrapper{
		mode:     mode | FD,
		conn:     conn,
		log:      log,
		minDelay: 250 * time.Millisecond,
		maxDelay: 30 * time.Second,
	}
	w.Stub = stub.New(w.writeFrame)
	return w
}

// NewWebSocket wraps an already-established *websocket.Conn.
func NewWebSocket(conn *websocket.Conn, mode Mode, log logger.Logger) *Wrapper {
	w := &Wrapper{
		mode:     mode | WebSocket,
		ws:       conn,
		log:      log,
		minDelay: 250 * time.Millisecond,
		maxDelay: 30 * time.Second,
	}
	w.Stub = stub.New(w.writeFrame)
	return w
}

// Robustify installs reopen, enabling automatic reconnection on hangup
// (spec.md §4.8); without it, a HUP destroys the wrapper.
func (w *Wrapper) Robustify(reopen Reopener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reopen = reopen
}

func (w *Wrapper) writeFrame(frame []byte) {
	w.mu.Lock()
	mode, conn, ws, dropped := w.mode, w.conn, w.ws, w.dropped
	w.mu.Unlock()

	if dropped {
		return
	}

	var err error
	if mode.Has(WebSocket) {
		err = ws.WriteMessage(websocket.BinaryMessage, frame)
	} else {
		buffers := net.Buffers{frame}
		_, err = buffers.WriteTo(conn)
	}
	if err != nil {
		w.onHangup()
	}
}

// ReadLoop blocks reading from the transport and feeding Stub.Receive until
// the connection closes or an unrecoverable error occurs. FD/Tls transports
// read into an append buffer, preserving any unconsumed tail across reads;
// WebSocket hands each whole inbound message straight to Stub.Receive,
// since the stub never packs more than one message per frame for that mode.
func (w *Wrapper) ReadLoop() error {
	if w.mode.Has(WebSocket) {
		return w.readLoopWS()
	}
	return w.readLoopConn()
}

func (w *Wrapper) readLoopConn() error {
	read := make([]byte, 64*1024)
	for {
		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()
		if conn == nil {
			return liberr.New(liberr.TransportDisconnected, "wrapper has no active connection")
		}

		n, err := conn.Read(read)
		if n > 0 {
			w.mu.Lock()
			w.buf = append(w.buf, read[:n]...)
			buf := w.buf
			w.mu.Unlock()

			consumed, derr := w.Stub.Receive(buf)
			w.mu.Lock()
			w.buf = append([]byte(nil), w.buf[consumed:]...)
			w.mu.Unlock()
			if derr != nil {
				return derr
			}
		}
		if err != nil {
			w.onHangup()
			if !w.tryReconnect() {
				return liberr.New(liberr.TransportHangup, "wrapper connection closed", err)
			}
		}
	}
}

func (w *Wrapper) readLoopWS() error {
	for {
		w.mu.Lock()
		ws := w.ws
		w.mu.Unlock()
		if ws == nil {
			return liberr.New(liberr.TransportDisconnected, "wrapper has no active websocket")
		}

		kind, msg, err := ws.ReadMessage()
		if err != nil {
			w.onHangup()
			if !w.tryReconnect() {
				return liberr.New(liberr.TransportHangup, "websocket closed", err)
			}
			continue
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if _, err := w.Stub.Receive(msg); err != nil {
			return err
		}
	}
}

func (w *Wrapper) onHangup() {
	w.mu.Lock()
	w.dropped = true
	w.mu.Unlock()
	w.Stub.Disconnected()
}

// tryReconnect applies a retryablehttp-style backoff delay, reused as a
// pure calculator rather than its HTTP client, then invokes reopen; it
// returns false when no reopen is registered, in which case the hangup is
// terminal (spec.md §4.8).
func (w *Wrapper) tryReconnect() bool {
	w.mu.Lock()
	reopen := w.reopen
	w.mu.Unlock()
	if reopen == nil {
		return false
	}

	w.mu.Lock()
	w.attempt++
	attempt := w.attempt
	min, max := w.minDelay, w.maxDelay
	w.mu.Unlock()

	delay := retryablehttp.DefaultBackoff(min, max, attempt, nil)
	time.Sleep(delay)

	conn, err := reopen()
	if err != nil || conn == nil {
		if w.log != nil {
			w.log.Warning("wrapper: reconnect attempt failed", "attempt", attempt, "error", err)
		}
		return true // keep retrying on the next hangup detection
	}

	w.mu.Lock()
	w.conn = conn
	w.dropped = false
	w.buf = nil
	w.attempt = 0
	w.mu.Unlock()
	return true
}

// Close shuts down the underlying transport.
func (w *Wrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.ws != nil {
		return w.ws.Close()
	}
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}
