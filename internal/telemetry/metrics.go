package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ad-campaigns/internal/core/domain"
)

const namespace = "adcampaigns"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing, which keeps wiring optional in tests.
type Metrics struct {
	counters      *prometheus.CounterVec
	paymentEvents *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracked_events_total",
			Help:      "Impressions and clicks recorded against campaigns.",
		}, []string{"counter"}),
		paymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_events_total",
			Help:      "Payment state changes applied to campaigns, by event and outcome.",
		}, []string{"event", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.counters, m.paymentEvents, m.httpDuration)
	return m
}

// CounterRecorded counts one persisted impression or click.
func (m *Metrics) CounterRecorded(counter domain.Counter) {
	if m == nil {
		return
	}
	m.counters.WithLabelValues(string(counter)).Inc()
}

// PaymentEvent counts a payment callback. outcome is "applied", "noop",
// "not_found" or "error".
func (m *Metrics) PaymentEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(event, outcome).Inc()
}

// ObserveHTTP records the latency of one request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
