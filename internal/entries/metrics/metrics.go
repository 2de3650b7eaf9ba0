package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the entry repository. A nil *Metrics records nothing.
type Metrics struct {
	Saved           *prometheus.CounterVec
	SaveLatency     prometheus.Histogram
	PublishFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Saved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_entries_saved_total",
			Help: "Entries saved by domain",
		}, []string{"domain"}),
		SaveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifedash_entries_save_duration_seconds",
			Help:    "Time spent writing one entry to the store",
			Buckets: prometheus.DefBuckets,
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifedash_entries_publish_failures_total",
			Help: "Saved entries whose entry.saved event could not be published",
		}),
	}
}

func (m *Metrics) IncrementSaved(domain string) {
	if m == nil {
		return
	}
	m.Saved.WithLabelValues(domain).Inc()
}

func (m *Metrics) ObserveSaveLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.SaveLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementPublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}
