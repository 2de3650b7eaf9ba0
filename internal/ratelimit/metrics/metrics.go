package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts limiter decisions. Methods are nil-safe.
type Metrics struct {
	Rejected *prometheus.CounterVec
	Errors   prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_ratelimit_rejected_total",
			Help: "Requests rejected by the command rate limit",
		}, []string{"scope"}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifedash_ratelimit_errors_total",
			Help: "Limiter store failures; the request was let through",
		}),
	}
}

func (m *Metrics) IncrementRejected(scope string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(scope).Inc()
}

func (m *Metrics) IncrementErrors() {
	if m == nil {
		return
	}
	m.Errors.Inc()
}
