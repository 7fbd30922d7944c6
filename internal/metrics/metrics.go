// Package metrics exposes Prometheus collectors for the medal pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medal_api"

// Outcome labels of a processed request.
const (
	OutcomeSuccess         = "success"
	OutcomeMissingKey      = "missing_key"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeUpstreamTimeout = "upstream_timeout"
	OutcomeNoImageURL      = "no_image_url"
	OutcomeServerError     = "server_error"
)

// Metrics holds a private registry and the collectors registered on it.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	processed        *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
}

// New creates the registry with process and Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medals_processed_total",
			Help:      "Medal processing requests by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "openai_request_duration_seconds",
			Help:      "Latency of image edit calls to OpenAI.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"endpoint"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.processed,
		m.upstreamDuration,
		m.rateLimited,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry, nil for a nil receiver.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordOutcome counts one processed request.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the latency of one OpenAI call.
//
// status is the HTTP status class ("2xx", "4xx", ...) or "error" when no
// response was received.
func (m *Metrics) ObserveUpstream(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordRateLimited counts one rejected request.
func (m *Metrics) RecordRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}
