package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor collects reset and evaluator metrics on a private registry
type Monitor struct {
	registry *prometheus.Registry

	resets    *prometheus.CounterVec
	items     *prometheus.CounterVec
	checks    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	lastReset prometheus.Gauge

	mu        sync.RWMutex
	startTime time.Time
	lastAt    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	m := &Monitor{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drq_resets_total",
				Help: "Quantity reset runs by trigger",
			},
			[]string{"trigger"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drq_items_updated_total",
				Help: "Stock updates written by outcome",
			},
			[]string{"outcome"},
		),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drq_trigger_checks_total",
				Help: "Trigger evaluations by outcome",
			},
			[]string{"outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drq_failures_total",
				Help: "Failed operations",
			},
			[]string{"operation"},
		),
		lastReset: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "drq_last_reset_timestamp_seconds",
				Help: "Unix time of the last completed reset",
			},
		),
	}

	m.registry.MustRegister(m.resets, m.items, m.checks, m.failures, m.lastReset)
	return m
}

// RecordReset records a completed reset run and the stock updates it wrote
func (m *Monitor) RecordReset(trigger string, updated map[string]int, at time.Time) {
	m.resets.WithLabelValues(trigger).Inc()
	for outcome, n := range updated {
		m.items.WithLabelValues(outcome).Add(float64(n))
	}
	m.lastReset.Set(float64(at.Unix()))

	m.mu.Lock()
	m.lastAt = at
	m.mu.Unlock()
}

// RecordCheck records the outcome of one trigger evaluation
func (m *Monitor) RecordCheck(outcome string) {
	m.checks.WithLabelValues(outcome).Inc()
}

// RecordFailure records a failed operation
func (m *Monitor) RecordFailure(operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

// LastReset returns the time of the last recorded reset, zero if none
func (m *Monitor) LastReset() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastAt
}

// Uptime returns how long the monitor has existed
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
