package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "lifedash/pkg/platform/audit"
)

// Metrics counts audit events by category. Methods are nil-safe.
type Metrics struct {
	Emitted *prometheus.CounterVec
	Sampled *prometheus.CounterVec
	Dropped *prometheus.CounterVec
}

// NewMetrics registers the audit counters with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_audit_events_emitted_total",
			Help: "Audit events accepted for persistence",
		}, []string{"category"}),
		Sampled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_audit_events_sampled_out_total",
			Help: "Operations audit events skipped by sampling",
		}, []string{"category"}),
		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}, []string{"category"}),
	}
}

func (m *Metrics) IncEmitted(c audit.EventCategory) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) IncSampled(c audit.EventCategory) {
	if m == nil {
		return
	}
	m.Sampled.WithLabelValues(string(c)).Inc()
}

func (m *Metrics) IncDropped(c audit.EventCategory) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(string(c)).Inc()
}
