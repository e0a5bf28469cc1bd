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
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/abinder/credential"
	liberr "github.com/nabbar/abinder/errors"
)

// DefaultSessionTimeout is the session lifetime a KindSessionSet frame gets
// when it does not specify one of its own.
const DefaultSessionTimeout = 30 * time.Minute

// ExportPolicy maps local API names to the remote name they are exported
// as, and remote API names to the local name they should be imported as
// (spec.md §4.7).
type ExportPolicy struct {
	Export map[string]string
	Import map[string]string
}

// inflight is one call this stub originated and is awaiting a reply for.
type inflight struct {
	onReply func(ReplyPayload)
}

// Stub turns calls/replies/events into wire Frames and back, tracking
// in-flight calls by a 32-bit id it allocates itself.
type Stub struct {
	notify func(frame []byte)

	mu      sync.Mutex
	calls   map[uint32]*inflight
	nextID  uint32
	version string

	Credentials *credential.Credentials
	Session     *credential.Session
	Token       *credential.Token

	Policy ExportPolicy

	subs map[string]struct{}

	onCall        func(id uint32, p CallPayload)
	onEvent       func(p EventPayload)
	onBroadcast   func(p EventBroadcastPayload)
	onSubscribe   func(event string)
	onUnsubscribe func(event string)
	onGoodbye     func()
}

// New returns a Stub that hands every outbound frame's bytes to notify; the
// wrapper owning this stub drains them onto the transport.
func New(notify func(frame []byte)) *Stub {
	return &Stub{
		notify: notify,
		calls:  make(map[uint32]*inflight),
		subs:   make(map[string]struct{}),
	}
}

// SetCallHandler installs the callback invoked when a KindCall frame
// arrives; absent a handler, KindCall frames are dropped and no reply is
// sent.
func (s *Stub) SetCallHandler(fn func(id uint32, p CallPayload)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCall = fn
}

func (s *Stub) SetEventHandler(fn func(p EventPayload)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// SetEventBroadcastHandler installs the callback invoked when a
// KindEventBroadcast frame arrives.
func (s *Stub) SetEventBroadcastHandler(fn func(p EventBroadcastPayload)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBroadcast = fn
}

// SetSubscribeHandler installs the callback invoked when the peer asks to
// subscribe to an event, after this stub has recorded it internally.
func (s *Stub) SetSubscribeHandler(fn func(event string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubscribe = fn
}

// SetUnsubscribeHandler installs the callback invoked when the peer asks to
// unsubscribe from an event, after this stub has dropped it internally.
func (s *Stub) SetUnsubscribeHandler(fn func(event string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnsubscribe = fn
}

// SetGoodbyeHandler installs the callback invoked when a KindGoodbye frame
// arrives, signalling the peer is closing the connection deliberately.
func (s *Stub) SetGoodbyeHandler(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGoodbye = fn
}

// NegotiatedVersion returns the version picked by the last successful
// OfferVersions/AcceptVersion exchange, or "" before negotiation.
func (s *Stub) NegotiatedVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// OfferVersions sends this stub's supported version list as a
// KindVersionOffer frame; call once at connect time before any Call.
func (s *Stub) OfferVersions() {
	s.emit(Frame{Kind: KindVersionOffer, Body: EncodeVersionOffer(SupportedVersions)})
}

// AcceptVersionOffer handles a received KindVersionOffer frame, negotiates,
// and replies with the chosen version as a KindVersionSelect frame.
func (s *Stub) AcceptVersionOffer(body []byte) (string, error) {
	remote := DecodeVersionOffer(body)
	chosen, err := Negotiate(SupportedVersions, remote)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.version = chosen
	s.mu.Unlock()
	s.emit(Frame{Kind: KindVersionSelect, Body: []byte(chosen)})
	return chosen, nil
}

// AcceptVersionSelect handles the peer's chosen version, completing the
// offering side of negotiation.
func (s *Stub) AcceptVersionSelect(body []byte) {
	s.mu.Lock()
	s.version = string(body)
	s.mu.Unlock()
}

// Call sends a new call frame and registers onReply to be invoked when its
// matching KindReply frame is received.
func (s *Stub) Call(p CallPayload, onReply func(ReplyPayload)) (uint32, error) {
	body, err := EncodeCBOR(p)
	if err != nil {
		return 0, err
	}

	id := atomic.AddUint32(&s.nextID, 1)
	s.mu.Lock()
	s.calls[id] = &inflight{onReply: onReply}
	s.mu.Unlock()

	s.emit(Frame{Kind: KindCall, ID: id, Body: body})
	return id, nil
}

// Reply sends the reply for a call this stub received as KindCall.
func (s *Stub) Reply(id uint32, p ReplyPayload) error {
	body, err := EncodeCBOR(p)
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindReply, ID: id, Body: body})
	return nil
}

// PushEvent sends an event frame to the peer (used by a server-side stub
// relaying a local Push/Broadcast to a remote subscriber).
func (s *Stub) PushEvent(p EventPayload) error {
	body, err := EncodeCBOR(p)
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindEvent, Body: body})
	return nil
}

// PushEventBroadcast sends a broadcast-distributed event frame to the peer,
// distinct from PushEvent's request-scoped delivery.
func (s *Stub) PushEventBroadcast(p EventBroadcastPayload) error {
	body, err := EncodeCBOR(p)
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindEventBroadcast, Body: body})
	return nil
}

// Subscribe asks the peer to start relaying broadcasts of event to this
// stub.
func (s *Stub) Subscribe(event string) error {
	body, err := EncodeCBOR(SubscribePayload{Event: event})
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindSubscribe, Body: body})
	return nil
}

// Unsubscribe asks the peer to stop relaying broadcasts of event.
func (s *Stub) Unsubscribe(event string) error {
	body, err := EncodeCBOR(SubscribePayload{Event: event})
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindUnsubscribe, Body: body})
	return nil
}

// Subscriptions returns the events the peer has asked this stub to relay,
// letting a broadcaster decide whether this connection is a subscriber
// before paying the cost of PushEventBroadcast.
func (s *Stub) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subs))
	for name := range s.subs {
		out = append(out, name)
	}
	return out
}

// Subscribed reports whether the peer is currently subscribed to event.
func (s *Stub) Subscribed(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[event]
	return ok
}

// SendSessionSet tells the peer which session uuid to bind this connection
// to; timeout of 0 asks the peer to apply DefaultSessionTimeout.
func (s *Stub) SendSessionSet(uuid string, timeout time.Duration) error {
	body, err := EncodeCBOR(SessionSetPayload{UUID: uuid, TimeoutSeconds: uint32(timeout / time.Second)})
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindSessionSet, Body: body})
	return nil
}

// SendTokenSet tells the peer which interned token name this connection
// carries.
func (s *Stub) SendTokenSet(name string) error {
	body, err := EncodeCBOR(TokenSetPayload{Name: name})
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindTokenSet, Body: body})
	return nil
}

// SendCredentialsSet tells the peer which on-behalf-of credentials export
// this connection carries.
func (s *Stub) SendCredentialsSet(export string) error {
	body, err := EncodeCBOR(CredentialsSetPayload{Export: export})
	if err != nil {
		return err
	}
	s.emit(Frame{Kind: KindCredentialsSet, Body: body})
	return nil
}

// Goodbye tells the peer this stub is closing the connection deliberately,
// rather than the peer discovering it via a transport hangup.
func (s *Stub) Goodbye() error {
	s.emit(Frame{Kind: KindGoodbye})
	return nil
}

func (s *Stub) emit(f Frame) {
	if s.notify != nil {
		s.notify(Encode(f))
	}
}

// Receive consumes as much of buf as forms complete frames, dispatching
// each to the matching handler, and returns how many bytes were consumed;
// the caller (the transport wrapper) must keep the unconsumed tail and
// prepend it to the next read, per spec.md §4.7's receive() contract.
func (s *Stub) Receive(buf []byte) (consumed int, err error) {
	offset := 0
	for {
		f, n, ok, err := Decode(buf[offset:])
		if err != nil {
			return offset, err
		}
		if !ok {
			return offset, nil
		}
		offset += n
		if err := s.dispatch(f); err != nil {
			return offset, err
		}
	}
}

func (s *Stub) dispatch(f Frame) error {
	switch f.Kind {
	case KindVersionOffer:
		_, err := s.AcceptVersionOffer(f.Body)
		return err
	case KindVersionSelect:
		s.AcceptVersionSelect(f.Body)
		return nil
	case KindCall:
		var p CallPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		handler := s.onCall
		s.mu.Unlock()
		if handler != nil {
			handler(f.ID, p)
		}
		return nil
	case KindReply:
		var p ReplyPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		in, ok := s.calls[f.ID]
		if ok {
			delete(s.calls, f.ID)
		}
		s.mu.Unlock()
		if !ok {
			return liberr.New(liberr.TransportFraming, "reply for unknown call id")
		}
		if in.onReply != nil {
			in.onReply(p)
		}
		return nil
	case KindEvent:
		var p EventPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		handler := s.onEvent
		s.mu.Unlock()
		if handler != nil {
			handler(p)
		}
		return nil
	case KindEventBroadcast:
		var p EventBroadcastPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		handler := s.onBroadcast
		s.mu.Unlock()
		if handler != nil {
			handler(p)
		}
		return nil
	case KindSubscribe:
		var p SubscribePayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		s.subs[p.Event] = struct{}{}
		handler := s.onSubscribe
		s.mu.Unlock()
		if handler != nil {
			handler(p.Event)
		}
		return nil
	case KindUnsubscribe:
		var p SubscribePayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		delete(s.subs, p.Event)
		handler := s.onUnsubscribe
		s.mu.Unlock()
		if handler != nil {
			handler(p.Event)
		}
		return nil
	case KindSessionSet:
		var p SessionSetPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		timeout := DefaultSessionTimeout
		if p.TimeoutSeconds > 0 {
			timeout = time.Duration(p.TimeoutSeconds) * time.Second
		}
		sess, _, err := credential.Get(p.UUID, timeout)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.Session = sess
		s.mu.Unlock()
		return nil
	case KindTokenSet:
		var p TokenSetPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		s.mu.Lock()
		s.Token = credential.Intern(p.Name)
		s.mu.Unlock()
		return nil
	case KindCredentialsSet:
		var p CredentialsSetPayload
		if err := DecodeCBOR(f.Body, &p); err != nil {
			return err
		}
		creds, err := credential.Import(p.Export)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.Credentials = creds
		s.mu.Unlock()
		return nil
	case KindGoodbye:
		s.mu.Lock()
		handler := s.onGoodbye
		s.mu.Unlock()
		if handler != nil {
			handler()
		}
		return nil
	default:
		return liberr.New(liberr.TransportFraming, "unknown frame kind")
	}
}

// Disconnected clears in-flight calls, invoking each onReply with an Error
// status so callers waiting on them observe termination rather than
// hanging forever (spec.md §4.8's stub.disconnected).
func (s *Stub) Disconnected() {
	s.mu.Lock()
	calls := s.calls
	s.calls = make(map[uint32]*inflight)
	s.mu.Unlock()

	for _, in := range calls {
		if in.onReply != nil {
			in.onReply(ReplyPayload{Status: -1})
		}
	}
}
