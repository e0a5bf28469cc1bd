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

package logger

import (
	"io"
	"log"

	"github.com/hashicorp/go-hclog"

	loglvl "github.com/nabbar/abinder/logger/level"
)

// HCLog adapts a Logger into an hclog.Logger so it can be handed to
// hashicorp/go-retryablehttp's Client.Logger, which the RPC wrapper's
// reconnect backoff calculator borrows (SPEC_FULL.md §6.7).
func HCLog(l Logger) hclog.Logger {
	return &hcShim{l: l}
}

type hcShim struct {
	l    Logger
	name string
}

func (h *hcShim) Log(level hclog.Level, msg string, args ...interface{}) {
	h.l.Entry(fromHC(level), msg, argsToFields(args))
}

func (h *hcShim) Trace(msg string, args ...interface{}) { h.l.Entry(loglvl.DebugLevel, msg, argsToFields(args)) }
func (h *hcShim) Debug(msg string, args ...interface{}) { h.l.Entry(loglvl.DebugLevel, msg, argsToFields(args)) }
func (h *hcShim) Info(msg string, args ...interface{})  { h.l.Entry(loglvl.InfoLevel, msg, argsToFields(args)) }
func (h *hcShim) Warn(msg string, args ...interface{})  { h.l.Entry(loglvl.WarningLevel, msg, argsToFields(args)) }
func (h *hcShim) Error(msg string, args ...interface{}) { h.l.Entry(loglvl.ErrorLevel, msg, argsToFields(args)) }

func (h *hcShim) IsTrace() bool { return true }
func (h *hcShim) IsDebug() bool { return true }
func (h *hcShim) IsInfo() bool  { return true }
func (h *hcShim) IsWarn() bool  { return true }
func (h *hcShim) IsError() bool { return true }

func (h *hcShim) ImpliedArgs() []interface{} { return nil }
func (h *hcShim) With(args ...interface{}) hclog.Logger {
	return &hcShim{l: h.l, name: h.name}
}
func (h *hcShim) Name() string { return h.name }
func (h *hcShim) Named(name string) hclog.Logger {
	return &hcShim{l: h.l, name: name}
}
func (h *hcShim) ResetNamed(name string) hclog.Logger {
	return &hcShim{l: h.l, name: name}
}
func (h *hcShim) SetLevel(level hclog.Level)   { h.l.SetLevel(fromHC(level)) }
func (h *hcShim) GetLevel() hclog.Level        { return toHC(h.l.GetLevel()) }
func (h *hcShim) StandardLogger(_ *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(h.l, "", 0)
}
func (h *hcShim) StandardWriter(_ *hclog.StandardLoggerOptions) io.Writer {
	return h.l
}

func argsToFields(args []interface{}) Fields {
	f := Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			f[k] = args[i+1]
		}
	}
	return f
}

func fromHC(level hclog.Level) loglvl.Level {
	switch level {
	case hclog.Trace, hclog.Debug:
		return loglvl.DebugLevel
	case hclog.Info:
		return loglvl.InfoLevel
	case hclog.Warn:
		return loglvl.WarningLevel
	case hclog.Error:
		return loglvl.ErrorLevel
	default:
		return loglvl.InfoLevel
	}
}

func toHC(level loglvl.Level) hclog.Level {
	switch level {
	case loglvl.DebugLevel, loglvl.ExtraDebugLevel:
		return hclog.Debug
	case loglvl.InfoLevel, loglvl.NoticeLevel:
		return hclog.Info
	case loglvl.WarningLevel:
		return hclog.Warn
	case loglvl.ErrorLevel, loglvl.CriticalLevel, loglvl.AlertLevel, loglvl.EmergencyLevel:
		return hclog.Error
	default:
		return hclog.Info
	}
}
