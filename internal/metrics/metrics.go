// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Signup outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	signups            *prometheus.CounterVec
	timeslotsGenerated prometheus.Counter
	rateLimited        prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openmic_http_requests_total",
				Help: "HTTP requests by route pattern, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openmic_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		signups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openmic_signups_total",
				Help: "Performer signup attempts by outcome and reason",
			},
			[]string{"outcome", "reason"},
		),
		timeslotsGenerated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "openmic_timeslots_generated_total",
				Help: "Timeslots written by generate and regenerate",
			},
		),
		rateLimited: f.NewCounter(
			prometheus.CounterOpts{
				Name: "openmic_rate_limited_total",
				Help: "Requests rejected by the signup rate limiter",
			},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// Signup records a signup attempt. reason is empty for accepted signups.
func (m *Metrics) Signup(outcome, reason string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(outcome, reason).Inc()
}

// TimeslotsGenerated adds n generated slots.
func (m *Metrics) TimeslotsGenerated(n int) {
	if m == nil {
		return
	}
	m.timeslotsGenerated.Add(float64(n))
}

// RateLimited counts one rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
