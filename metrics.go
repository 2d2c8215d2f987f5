// Copyright 2026 The Kmsvisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kmsvisor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the supervisor's Prometheus collectors.  They live in a
// private registry, so that several supervisors (as in tests) do not
// collide.
type Metrics struct {
	starts        *prometheus.CounterVec
	startFailures *prometheus.CounterVec
	exits         *prometheus.CounterVec
	up            *prometheus.GaugeVec
	state         prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors.  An empty namespace
// means "kmsvisor".
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "kmsvisor"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.starts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_starts_total",
			Help:      "Total number of child processes started",
		},
		[]string{"process"},
	)
	m.startFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_start_failures_total",
			Help:      "Total number of child processes that failed to start",
		},
		[]string{"process"},
	)
	m.exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_exits_total",
			Help:      "Total number of child process exits, by exit code",
		},
		[]string{"process", "code"},
	)
	m.up = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_up",
			Help:      "Whether the child process is running",
		},
		[]string{"process"},
	)
	m.state = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "supervisor_state",
			Help:      "Lifecycle state of the supervisor (0 starting, 1 running, 2 stopping, 3 stopped)",
		},
	)

	m.registry.MustRegister(m.starts, m.startFailures, m.exits, m.up, m.state)
	return m
}

func (m *Metrics) ProcessStarted(name string) {
	m.starts.WithLabelValues(name).Inc()
	m.up.WithLabelValues(name).Set(1)
}

func (m *Metrics) ProcessStartFailed(name string) {
	m.startFailures.WithLabelValues(name).Inc()
	m.up.WithLabelValues(name).Set(0)
}

func (m *Metrics) ProcessExited(name string, code int) {
	m.exits.WithLabelValues(name, strconv.Itoa(code)).Inc()
	m.up.WithLabelValues(name).Set(0)
}

func (m *Metrics) SetState(s State) {
	m.state.Set(float64(s))
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
