/*
 * CSOPESYMO1 - Paging engine Prometheus metrics.
 *
 * Copyright 2026, CSOPESYMO1 authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package paging

import "github.com/prometheus/client_golang/prometheus"

// prometheusCollector is a local alias so paging.go doesn't need to
// import prometheus directly just to spell the return type of
// Engine.Metrics.
type prometheusCollector = prometheus.Collector

// metrics holds the vmstat-style counters as Prometheus collectors,
// giving them a /metrics home the way the spec's "counters" (pages_in,
// pages_out, ...) never had in the original program.
type metrics struct {
	pagesIn    prometheus.Counter
	pagesOut   prometheus.Counter
	usedMemory prometheus.Gauge
	freeMemory prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		pagesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csopesymo1",
			Subsystem: "paging",
			Name:      "pages_in_total",
			Help:      "Cumulative number of page-in (fault-resolved) operations.",
		}),
		pagesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csopesymo1",
			Subsystem: "paging",
			Name:      "pages_out_total",
			Help:      "Cumulative number of page-out (eviction) operations.",
		}),
		usedMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "csopesymo1",
			Subsystem: "paging",
			Name:      "used_memory_bytes",
			Help:      "Bytes currently resident in occupied frames.",
		}),
		freeMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "csopesymo1",
			Subsystem: "paging",
			Name:      "free_memory_bytes",
			Help:      "Bytes currently available in unoccupied frames.",
		}),
	}
}

func (m *metrics) collectors() []prometheusCollector {
	return []prometheusCollector{m.pagesIn, m.pagesOut, m.usedMemory, m.freeMemory}
}
