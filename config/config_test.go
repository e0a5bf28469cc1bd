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

package config_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"

	"github.com/nabbar/abinder/config"
	"github.com/nabbar/abinder/logger"
)

type fakeComponent struct {
	typ       string
	starts    int32
	reloads   int32
	stops     int32
	startErr  error
	reloadErr error
	get       config.FuncGet
}

func (f *fakeComponent) Type() string { return f.typ }

func (f *fakeComponent) Init(key string, ctx context.Context, get config.FuncGet, log logger.Logger) {
	f.get = get
}

func (f *fakeComponent) Start() error {
	atomic.AddInt32(&f.starts, 1)
	return f.startErr
}

func (f *fakeComponent) Reload() error {
	atomic.AddInt32(&f.reloads, 1)
	return f.reloadErr
}

func (f *fakeComponent) Stop() {
	atomic.AddInt32(&f.stops, 1)
}

func (f *fakeComponent) IsStarted() bool { return atomic.LoadInt32(&f.starts) > 0 }
func (f *fakeComponent) IsRunning() bool { return f.IsStarted() }

func TestConfig_RegisterStartStopSequencesComponents(t *testing.T) {
	c := config.New(context.Background(), viper.New(), nil)

	a := &fakeComponent{typ: "export"}
	b := &fakeComponent{typ: "import"}

	if err := c.Register("a", a); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := c.Register("b", b); err != nil {
		t.Fatalf("Register b: %v", err)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if a.starts != 1 || b.starts != 1 {
		t.Fatalf("expected both components started once, got a=%d b=%d", a.starts, b.starts)
	}

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if a.reloads != 1 || b.reloads != 1 {
		t.Fatalf("expected both components reloaded once, got a=%d b=%d", a.reloads, b.reloads)
	}

	c.Stop()
	if a.stops != 1 || b.stops != 1 {
		t.Fatalf("expected both components stopped once, got a=%d b=%d", a.stops, b.stops)
	}
}

func TestConfig_RegisterRejectsDuplicateKey(t *testing.T) {
	c := config.New(context.Background(), viper.New(), nil)
	if err := c.Register("a", &fakeComponent{}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := c.Register("a", &fakeComponent{}); err == nil {
		t.Fatalf("expected duplicate key registration to fail")
	}
}

func TestConfig_StartStopsAtFirstFailure(t *testing.T) {
	c := config.New(context.Background(), viper.New(), nil)
	a := &fakeComponent{typ: "export"}
	b := &fakeComponent{typ: "import", startErr: context.DeadlineExceeded}
	d := &fakeComponent{typ: "export"}

	_ = c.Register("a", a)
	_ = c.Register("b", b)
	_ = c.Register("d", d)

	if err := c.Start(); err == nil {
		t.Fatalf("expected Start to surface component b's error")
	}
	if d.starts != 0 {
		t.Fatalf("expected component after the failing one to be left unstarted, got %d", d.starts)
	}
}

func TestConfig_ExportSpecsDecodesFreeFormMap(t *testing.T) {
	v := viper.New()
	v.Set("binder.export", []map[string]interface{}{
		{"api": "greeter", "uri": "tcp://0.0.0.0:1234", "private": false},
		{"api": "admin", "uri": "unix:/run/abinder/admin.sock", "private": true},
	})

	c := config.New(context.Background(), v, nil)
	specs, err := c.ExportSpecs("binder")
	if err != nil {
		t.Fatalf("ExportSpecs: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 export specs, got %d", len(specs))
	}
	if specs[0].API != "greeter" || specs[0].URI != "tcp://0.0.0.0:1234" || specs[0].Private {
		t.Fatalf("unexpected first export spec: %+v", specs[0])
	}
	if specs[1].API != "admin" || !specs[1].Private {
		t.Fatalf("unexpected second export spec: %+v", specs[1])
	}
}

func TestConfig_ImportSpecsDecodesFreeFormMap(t *testing.T) {
	v := viper.New()
	v.Set("binder.import", []map[string]interface{}{
		{"api": "weather", "uri": "tcp://weather.internal:4321"},
	})

	c := config.New(context.Background(), v, nil)
	specs, err := c.ImportSpecs("binder")
	if err != nil {
		t.Fatalf("ImportSpecs: %v", err)
	}
	if len(specs) != 1 || specs[0].API != "weather" {
		t.Fatalf("unexpected import specs: %+v", specs)
	}
}

func TestConfig_ExportSpecsEmptyWhenKeyAbsent(t *testing.T) {
	c := config.New(context.Background(), viper.New(), nil)
	specs, err := c.ExportSpecs("absent")
	if err != nil {
		t.Fatalf("ExportSpecs: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("expected no export specs, got %d", len(specs))
	}
}
