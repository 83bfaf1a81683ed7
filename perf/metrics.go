// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package perf

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsSubSystemSession = "session"

// Metrics exposes the session's telemetry through a prometheus registry. It
// implements the session.Metrics interface.
type Metrics struct {
	registry *prometheus.Registry

	EventCounters        *prometheus.CounterVec
	EventDroppedCounters *prometheus.CounterVec
	StateCounters        *prometheus.CounterVec
	MembersGauge         prometheus.Gauge
}

func NewMetrics(namespace string, registry *prometheus.Registry) *Metrics {
	var m Metrics

	if registry != nil {
		m.registry = registry
	} else {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: namespace,
		}))
		m.registry.MustRegister(collectors.NewGoCollector())
	}

	m.EventCounters = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubSystemSession,
			Name:      "events_total",
			Help:      "Total number of applied transport events",
		},
		[]string{"type"},
	)
	m.registry.MustRegister(m.EventCounters)

	m.EventDroppedCounters = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubSystemSession,
			Name:      "events_dropped_total",
			Help:      "Total number of discarded transport events",
		},
		[]string{"reason"},
	)
	m.registry.MustRegister(m.EventDroppedCounters)

	m.StateCounters = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubSystemSession,
			Name:      "state_transitions_total",
			Help:      "Total number of session lifecycle state transitions",
		},
		[]string{"state"},
	)
	m.registry.MustRegister(m.StateCounters)

	m.MembersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubSystemSession,
			Name:      "members_total",
			Help:      "Current size of the session membership set",
		},
	)
	m.registry.MustRegister(m.MembersGauge)

	return &m
}

func (m *Metrics) IncEvents(evType string) {
	m.EventCounters.With(prometheus.Labels{"type": evType}).Inc()
}

func (m *Metrics) IncEventsDropped(reason string) {
	m.EventDroppedCounters.With(prometheus.Labels{"reason": reason}).Inc()
}

func (m *Metrics) IncStateTransitions(state string) {
	m.StateCounters.With(prometheus.Labels{"state": state}).Inc()
}

func (m *Metrics) SetMembers(val float64) {
	m.MembersGauge.Set(val)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
