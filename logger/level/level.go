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

// Package level is the binder's syslog-style severity scale (spec.md §6.4):
// 0..7 plus an extra-debug level 8, used both by the logger and by each
// API's log mask.
package level

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a syslog-style severity, 0 (Emergency) through 8 (ExtraDebug).
type Level uint8

const (
	EmergencyLevel Level = iota
	AlertLevel
	CriticalLevel
	ErrorLevel
	WarningLevel
	NoticeLevel
	InfoLevel
	DebugLevel
	ExtraDebugLevel

	// NilLevel disables logging entirely; it is one past the last real level.
	NilLevel
)

func (l Level) String() string {
	switch l {
	case EmergencyLevel:
		return "Emergency"
	case AlertLevel:
		return "Alert"
	case CriticalLevel:
		return "Critical"
	case ErrorLevel:
		return "Error"
	case WarningLevel:
		return "Warning"
	case NoticeLevel:
		return "Notice"
	case InfoLevel:
		return "Info"
	case DebugLevel:
		return "Debug"
	case ExtraDebugLevel:
		return "ExtraDebug"
	default:
		return ""
	}
}

// Parse is case-insensitive and defaults to InfoLevel for unrecognized
// input, matching the teacher's logger/level.Parse contract.
func Parse(s string) Level {
	for _, l := range []Level{
		EmergencyLevel, AlertLevel, CriticalLevel, ErrorLevel,
		WarningLevel, NoticeLevel, InfoLevel, DebugLevel, ExtraDebugLevel,
	} {
		if strings.EqualFold(l.String(), s) {
			return l
		}
	}
	return InfoLevel
}

// Logrus maps a binder Level onto the nearest logrus.Level.
func (l Level) Logrus() logrus.Level {
	switch l {
	case EmergencyLevel, AlertLevel, CriticalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarningLevel:
		return logrus.WarnLevel
	case NoticeLevel, InfoLevel:
		return logrus.InfoLevel
	case DebugLevel, ExtraDebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Enabled reports whether a message logged at msg should be emitted given
// a minimal threshold of l (lower numeric value == more severe == always
// wins).
func (l Level) Enabled(msg Level) bool {
	return msg <= l
}
