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
	jww "github.com/spf13/jwalterweatherman"

	loglvl "github.com/nabbar/abinder/logger/level"
)

// JWW installs l as the backing writer for both of viper's jwalterweatherman
// notepads, so config.Component (spec.md §9) reload/watch diagnostics flow
// through the same sink as everything else.
func JWW(l Logger) {
	jww.SetStdoutThreshold(jww.LevelInfo)
	jww.SetLogThreshold(jww.LevelTrace)
	jww.SetLogOutput(&jwwWriter{l: l, lvl: loglvl.DebugLevel})
}

type jwwWriter struct {
	l   Logger
	lvl loglvl.Level
}

func (w *jwwWriter) Write(p []byte) (int, error) {
	w.l.Entry(w.lvl, string(p), nil)
	return len(p), nil
}
