// Package metrics exposes Prometheus collectors for stream activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clprng"

// Metrics groups the stream collectors. A nil *Metrics records nothing.
type Metrics struct {
	launches     *prometheus.CounterVec
	refills      *prometheus.CounterVec
	elements     *prometheus.CounterVec
	allocRetries prometheus.Counter
	buildSeconds *prometheus.HistogramVec
	openStreams  prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kernel",
				Name:      "launches_total",
				Help:      "Kernel launches by entry point",
			},
			[]string{"kernel"},
		),
		refills: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "refills_total",
				Help:      "Output buffer refills by algorithm",
			},
			[]string{"algorithm"},
		),
		elements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "elements_copied_total",
				Help:      "Elements copied out of output buffers",
			},
			[]string{"algorithm", "precision"},
		),
		allocRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "buffer",
				Name:      "allocation_retries_total",
				Help:      "Allocations retried after a compaction",
			},
		),
		buildSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "program",
				Name:      "build_seconds",
				Help:      "Program build duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
		openStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "open_streams",
				Help:      "Streams currently held by the service",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.launches, m.refills, m.elements, m.allocRetries, m.buildSeconds, m.openStreams)
	}
	return m
}

func (m *Metrics) Launch(kernel string) {
	if m == nil {
		return
	}
	m.launches.WithLabelValues(kernel).Inc()
}

func (m *Metrics) Refill(algorithm string) {
	if m == nil {
		return
	}
	m.refills.WithLabelValues(algorithm).Inc()
}

func (m *Metrics) Copied(algorithm, precision string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.elements.WithLabelValues(algorithm, precision).Add(float64(n))
}

func (m *Metrics) AllocRetry() {
	if m == nil {
		return
	}
	m.allocRetries.Inc()
}

func (m *Metrics) Build(algorithm string, d time.Duration) {
	if m == nil {
		return
	}
	m.buildSeconds.WithLabelValues(algorithm).Observe(d.Seconds())
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.openStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.openStreams.Dec()
}
