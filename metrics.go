package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry     *prometheus.Registry
	roundsMade   prometheus.Counter
	roundsFailed *prometheus.CounterVec
	sessions     prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		roundsMade: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seminar",
			Name:      "rounds_made_total",
			Help:      "The total number of partitions made.",
		}),
		roundsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seminar",
			Name:      "rounds_failed_total",
			Help:      "The total number of rejected partition requests, by reason.",
		}, []string{"reason"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seminar",
			Name:      "active_sessions",
			Help:      "The number of seminars with an in-memory encounter history.",
		}),
	}
	m.registry.MustRegister(m.roundsMade, m.roundsFailed, m.sessions)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
