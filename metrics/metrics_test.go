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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/nabbar/abinder/metrics"
)

func TestRegistry_RegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("abinder_test")
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m.ObserveRequest("greeter", "hello", "ok", 0.01)
	m.ObservePermission("hit")
	m.ObserveBroadcast("greeter/tick")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found int
	for _, f := range families {
		switch f.GetName() {
		case "abinder_test_requests_total", "abinder_test_permission_cache_total", "abinder_test_events_broadcast_total":
			found++
		}
	}
	if found != 3 {
		t.Fatalf("expected 3 observed metric families, got %d", found)
	}
}

func TestRegistry_ObservePermissionCountsHitsAndMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("abinder_perm")
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m.ObservePermission("hit")
	m.ObservePermission("hit")
	m.ObservePermission("miss")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var total float64
	for _, f := range families {
		if f.GetName() != "abinder_perm_permission_cache_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metricValue(metric)
		}
	}
	if total != 3 {
		t.Fatalf("expected 3 total permission cache observations, got %v", total)
	}
}

func TestRegistry_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("abinder_dup")
	if err := m.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := m.Register(reg); err == nil {
		t.Fatalf("expected a second Register against the same registry to fail")
	}
}

func metricValue(m *dto.Metric) float64 {
	if m.GetCounter() != nil {
		return m.GetCounter().GetValue()
	}
	if m.GetGauge() != nil {
		return m.GetGauge().GetValue()
	}
	return 0
}
