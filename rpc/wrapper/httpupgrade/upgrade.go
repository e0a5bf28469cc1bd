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

// Package httpupgrade is the sole boundary between the binder and an HTTP
// server: it recognizes a websocket upgrade request on a gin route and
// switches the connection to the RPC wire protocol (spec.md §4.8, §6.7;
// grounded on afb-upgrade.c/afb-websock.c, which hand a raw socket to the
// same kind of upgrader once libmicrohttpd has queued the 101 response).
// It is not, and does not grow into, a generic HTTP server: request
// routing, TLS termination and the rest of the HTTP stack stay gin's job.
package httpupgrade

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nabbar/abinder/apiset"
	"github.com/nabbar/abinder/auth"
	"github.com/nabbar/abinder/credential"
	liberr "github.com/nabbar/abinder/errors"
	"github.com/nabbar/abinder/logger"
	"github.com/nabbar/abinder/rpc/dispatch"
	"github.com/nabbar/abinder/rpc/wrapper"
)

// SessionTimeout is the lifetime, counted from creation, of a session that
// an upgraded connection creates; dropping the connection does not change
// it.
const SessionTimeout = 30 * time.Minute

// sessionCookieName is the cookie the upgrader reads an existing
// session uuid from, mirroring the x-afb-uuid convention the original HTTP
// binding used to correlate successive requests to one Session.
const sessionCookieName = "x-afb-uuid"

var upgrader = websocket.Upgrader{
	// Subprotocol negotiation happens inside the RPC version handshake, not
	// at the HTTP layer, so every origin/subprotocol is accepted here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Upgrade checks whether c's request is a websocket upgrade request (no
// subprotocol is checked) and, if so, completes the handshake, binds a Session to the
// connection, and starts relaying RPC frames against set for as long as the
// socket stays open. It returns nil without touching c's response when the
// request is not an upgrade request, letting gin fall through to ordinary
// HTTP routing, per afb_upgrade_check_upgrade's "let report default status
// if upgrader is not found" fallthrough.
func Upgrade(c *gin.Context, set *apiset.Set, checker auth.Checker, log logger.Logger) error {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		return nil
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return liberr.New(liberr.TransportHangup, "websocket upgrade failed", err)
	}

	uuid, _ := c.Cookie(sessionCookieName)
	sess, _, err := credential.Get(uuid, SessionTimeout)
	if err != nil {
		_ = conn.Close()
		return err
	}

	w := wrapper.NewWebSocket(conn, wrapper.WebSocket, log)
	w.Stub.Session = sess
	dispatch.Bind(w.Stub, set, checker, log)

	go func() {
		defer func() {
			_ = sess.Unref()
			_ = w.Close()
		}()
		if err := w.ReadLoop(); err != nil && log != nil {
			log.Info("httpupgrade: connection closed", "error", err)
		}
	}()

	return nil
}
