// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gesture_lock/internal/lock"
)

const namespace = "gesture_lock"

// Metrics counts lock activity for Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	verifications *prometheus.CounterVec
	locked        prometheus.Gauge
	score         prometheus.Histogram
	totalDiff     prometheus.Histogram
}

// NewMetrics registers the lock metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		events: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Handled lock events by kind",
		}, []string{"event"}),
		verifications: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification attempts by outcome",
		}, []string{"outcome"}),
		locked: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locked",
			Help:      "1 while a key is armed, 0 when unlocked",
		}),
		score: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_score",
			Help:      "Normalized match score of verification attempts",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		totalDiff: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_total_diff",
			Help:      "Total displacement difference of verification attempts",
			Buckets:   []float64{10, 25, 50, 75, 110, 150, 250, 500},
		}),
	}
}

// Observe implements lock.Observer.
func (m *Metrics) Observe(r lock.Report) {
	m.events.WithLabelValues(r.Event.String()).Inc()

	if r.State == lock.Locked {
		m.locked.Set(1)
	} else {
		m.locked.Set(0)
	}

	if r.Result == nil {
		return
	}
	outcome := "failure"
	if r.Result.Success {
		outcome = "success"
	}
	m.verifications.WithLabelValues(outcome).Inc()
	m.score.Observe(r.Result.Score)
	m.totalDiff.Observe(r.Result.TotalDiff)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background.
func (m *Metrics) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	go func() {
		log.Printf("telemetry: metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("telemetry: metrics server error: %v", err)
		}
	}()
}
