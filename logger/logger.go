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

// Package logger is the binder's structured logging surface (spec.md §6.4),
// backed by logrus, with a jwalterweatherman shim for the viper-driven
// config loader and an hclog shim for the RPC reconnection client.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/abinder/logger/level"
	logmsk "github.com/nabbar/abinder/logger/mask"
)

// Logger is the minimal structured-logging contract every binder component
// depends on. It extends io.WriteCloser so it can stand in for any
// io.Writer-shaped sink (e.g. as logrus's own output, or a net/http
// ErrorLog).
type Logger interface {
	io.WriteCloser

	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(f Fields)
	GetFields() Fields

	// Mask returns the level mask this logger enforces in addition to its
	// GetLevel threshold; APIs install their own Mask here (spec.md §6.4).
	Mask() *logmsk.Mask

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})

	// Entry logs message at lvl with extra fields, honoring both the
	// level threshold and the mask.
	Entry(lvl loglvl.Level, message string, fields Fields)

	// Clone returns an independent logger sharing the same backend but
	// with its own level/fields/mask, used when a request or API wants to
	// narrow logging without affecting its parent.
	Clone() Logger
}

type lgr struct {
	mu     sync.RWMutex
	back   *logrus.Logger
	level  loglvl.Level
	fields Fields
	mask   *logmsk.Mask
}

// New returns a console logger writing through go-colorable so ANSI colors
// degrade gracefully on non-TTY outputs (teacher: logger/formatter.go +
// console/color.go pattern).
func New() Logger {
	back := logrus.New()
	back.SetOutput(colorable.NewColorableStdout())
	back.SetFormatter(&logrus.TextFormatter{
		ForceColors:   color.NoColor == false,
		FullTimestamp: true,
	})

	l := &lgr{
		back:   back,
		level:  loglvl.InfoLevel,
		fields: Fields{},
		mask:   logmsk.New(loglvl.InfoLevel),
	}
	back.SetLevel(l.level.Logrus())
	return l
}

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.level = lvl
	o.back.SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() loglvl.Level {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.level
}

func (o *lgr) SetFields(f Fields) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fields = f.Clone()
}

func (o *lgr) GetFields() Fields {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fields.Clone()
}

func (o *lgr) Mask() *logmsk.Mask {
	return o.mask
}

func (o *lgr) Write(p []byte) (n int, err error) {
	o.Entry(loglvl.InfoLevel, string(p), nil)
	return len(p), nil
}

func (o *lgr) Close() error {
	return nil
}

func (o *lgr) Debug(message string, args ...interface{}) {
	o.Entry(loglvl.DebugLevel, fmt.Sprintf(message, args...), nil)
}

func (o *lgr) Info(message string, args ...interface{}) {
	o.Entry(loglvl.InfoLevel, fmt.Sprintf(message, args...), nil)
}

func (o *lgr) Warning(message string, args ...interface{}) {
	o.Entry(loglvl.WarningLevel, fmt.Sprintf(message, args...), nil)
}

func (o *lgr) Error(message string, args ...interface{}) {
	o.Entry(loglvl.ErrorLevel, fmt.Sprintf(message, args...), nil)
}

func (o *lgr) Entry(lvl loglvl.Level, message string, fields Fields) {
	if !o.level.Enabled(lvl) || !o.mask.Allowed(lvl) {
		return
	}

	o.mu.RLock()
	all := o.fields.Merge(fields)
	o.mu.RUnlock()

	e := o.back.WithFields(logrus.Fields(all))
	e.Log(lvl.Logrus(), message)
}

func (o *lgr) Clone() Logger {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return &lgr{
		back:   o.back,
		level:  o.level,
		fields: o.fields.Clone(),
		mask:   o.mask.Clone(),
	}
}
