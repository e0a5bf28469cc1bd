/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

// CodeError classifies an Error by taxonomy, per SPEC_FULL.md §10. Ranges
// mirror HTTP-style numeric classification the way the teacher's errors
// package classifies by code, but the bands below are the binder's own.
type CodeError uint16

const (
	// Unset is the code of an error wrapped from a plain Go error.
	Unset CodeError = 0

	// Argument errors: invalid name, out-of-range LOA, malformed URI.
	ArgInvalidName CodeError = 1000 + iota
	ArgInvalidLOA
	ArgInvalidURI
	ArgInvalidVerb
	ArgInvalidValue
)

const (
	// Resource errors: allocation failure, table full, socket exhaustion.
	ResAllocFailed CodeError = 2000 + iota
	ResTableFull
	ResSocketExhausted
	ResNotFound
)

const (
	// State errors: sealed API, duplicate verb, closed session.
	StateSealed CodeError = 3000 + iota
	StateVerbExists
	StateSessionClosed
	StateDuplicateDeclare
	StateAlreadyReplied
)

const (
	// Permission errors: denied or authority unreachable.
	PermDenied CodeError = 4000 + iota
	PermAuthorityUnreachable
	PermTokenInvalid
)

const (
	// Transport errors: peer hangup, framing violation, version mismatch.
	TransportHangup CodeError = 5000 + iota
	TransportFraming
	TransportVersionMismatch
	TransportDisconnected
)

const (
	// Programming errors: double reply, verb never replies (not itself an
	// error but logged as a warning through this code).
	ProgDoubleReply CodeError = 6000 + iota
	ProgNeverReplied
)

// IsArgument reports whether code falls in the Argument band.
func (c CodeError) IsArgument() bool { return c >= 1000 && c < 2000 }

// IsResource reports whether code falls in the Resource band.
func (c CodeError) IsResource() bool { return c >= 2000 && c < 3000 }

// IsState reports whether code falls in the State band.
func (c CodeError) IsState() bool { return c >= 3000 && c < 4000 }

// IsPermission reports whether code falls in the Permission band.
func (c CodeError) IsPermission() bool { return c >= 4000 && c < 5000 }

// IsTransport reports whether code falls in the Transport band.
func (c CodeError) IsTransport() bool { return c >= 5000 && c < 6000 }

// IsProgramming reports whether code falls in the Programming band.
func (c CodeError) IsProgramming() bool { return c >= 6000 && c < 7000 }
