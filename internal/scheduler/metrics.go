/*
 * CSOPESYMO1 - Scheduler Prometheus metrics.
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

package scheduler

import "github.com/prometheus/client_golang/prometheus"

// schedMetrics publishes the tick accounting VMStat already tracks as
// Prometheus counters, giving active_ticks/idle_ticks a /metrics home
// alongside the paging engine's counters.
type schedMetrics struct {
	activeTicks prometheus.Counter
	idleTicks   prometheus.Counter
}

func newSchedMetrics() *schedMetrics {
	return &schedMetrics{
		activeTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csopesymo1",
			Subsystem: "scheduler",
			Name:      "active_ticks_total",
			Help:      "Cumulative number of instruction steps executed across all cores.",
		}),
		idleTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "csopesymo1",
			Subsystem: "scheduler",
			Name:      "idle_ticks_total",
			Help:      "Cumulative number of core ticks spent on an unresolved page fault.",
		}),
	}
}

// Metrics returns the scheduler's Prometheus collectors for
// registration against a /metrics endpoint.
func (s *Scheduler) Metrics() []prometheus.Collector {
	return []prometheus.Collector{s.metrics.activeTicks, s.metrics.idleTicks}
}
