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

// Package metrics is the binder's prometheus surface (spec.md §6.6): request
// counters by api/verb/status, an event-loop cycle gauge, and the
// permission-cache hit ratio, registered on a caller-supplied registerer the
// way the teacher's prometheus package hands its collectors to a
// *prometheus.Registry rather than assuming the global default one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every collector the binder exposes. The zero value is
// not usable; build one with New and Register it before use.
type Registry struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	EventLoopCycle   prometheus.Gauge
	EventLoopWaiting prometheus.Gauge
	PermissionCache  *prometheus.CounterVec
	EventsBroadcast  *prometheus.CounterVec
}

// New builds a Registry under the given namespace without registering it
// anywhere; call Register to attach it to a prometheus.Registerer.
func New(namespace string) *Registry {
	return &Registry{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total verb calls dispatched, by api, verb and outcome status.",
		}, []string{"api", "verb", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from verb dispatch to reply, by api and verb.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api", "verb"}),

		EventLoopCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evloop_cycle_duration_seconds",
			Help:      "Duration of the most recently completed event loop cycle.",
		}),

		EventLoopWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evloop_registered_fds",
			Help:      "Number of file descriptors currently registered with the event loop.",
		}),

		PermissionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_cache_total",
			Help:      "Permission checks resolved, split by hit and miss.",
		}, []string{"result"}),

		EventsBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_broadcast_total",
			Help:      "Events pushed through the broadcaster, by event name.",
		}, []string{"event"}),
	}
}

// Register attaches every collector in r to reg. Callers typically pass a
// fresh *prometheus.Registry rather than prometheus.DefaultRegisterer so
// multiple binder instances in one process do not collide.
func (r *Registry) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		r.RequestsTotal,
		r.RequestDuration,
		r.EventLoopCycle,
		r.EventLoopWaiting,
		r.PermissionCache,
		r.EventsBroadcast,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records one verb dispatch's outcome and latency.
func (r *Registry) ObserveRequest(api, verb, status string, seconds float64) {
	r.RequestsTotal.WithLabelValues(api, verb, status).Inc()
	r.RequestDuration.WithLabelValues(api, verb).Observe(seconds)
}

// ObservePermission records a permission check's cache outcome; result is
// "hit" or "miss".
func (r *Registry) ObservePermission(result string) {
	r.PermissionCache.WithLabelValues(result).Inc()
}

// ObserveBroadcast records one event push.
func (r *Registry) ObserveBroadcast(event string) {
	r.EventsBroadcast.WithLabelValues(event).Inc()
}
