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

// Package config is the binder's hosting-level configuration surface
// (spec.md §1's non-goal carve-out: "actual flag/file parsing is out of
// scope"; this package only exposes the typed surface the core consumes).
// Components follow the teacher's Init/Start/Reload/Stop lifecycle, loaded
// through spf13/viper with fsnotify-driven hot reload.
package config

import (
	"context"

	"github.com/nabbar/abinder/logger"
)

// FuncGet resolves another registered Component by key, letting one
// component depend on another the way the teacher's FuncCptGet does.
type FuncGet func(key string) Component

// Component is a distinct configurable subsystem of the binder — an
// exported apiset's listen socket, an imported remote API, the log level.
type Component interface {
	// Type identifies this component's kind for logging/diagnostics.
	Type() string

	// Init provides the component its registration key and shared
	// resources; it must not start any goroutine or connection yet.
	Init(key string, ctx context.Context, get FuncGet, log logger.Logger)

	// Start reads this component's current viper values and brings it up.
	Start() error

	// Reload re-reads this component's viper values, applying changes
	// without a full restart where possible.
	Reload() error

	// Stop shuts the component down; it must not return an error, only
	// clean up best-effort, mirroring the teacher's Stop() contract.
	Stop()

	IsStarted() bool
	IsRunning() bool
}
