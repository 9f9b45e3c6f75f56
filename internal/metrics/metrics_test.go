package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Signup(OutcomeAccepted, "")
	m.Signup(OutcomeRejected, "timeslot_full")
	m.Signup(OutcomeRejected, "timeslot_full")
	m.TimeslotsGenerated(4)
	m.RateLimited()
	m.ObserveRequest("GET /api/events", "GET", "200", 0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues(OutcomeAccepted, "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.signups.WithLabelValues(OutcomeRejected, "timeslot_full")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.timeslotsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/events", "GET", "200")))
}

func TestMetrics_nilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Signup(OutcomeError, "")
		m.TimeslotsGenerated(3)
		m.RateLimited()
		m.ObserveRequest("x", "GET", "200", 1)
	})
}
