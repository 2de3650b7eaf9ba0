package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the command pipeline. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	// Requests by outcome (processed, no_command, no_entities, extractor_unavailable)
	Commands *prometheus.CounterVec

	// Results by domain and final status
	Entities *prometheus.CounterVec

	// How the router chose a domain
	RoutingReasons *prometheus.CounterVec

	// Security flags raised by the sanitizer
	SecurityFlags *prometheus.CounterVec

	// Language service call duration by result (ok, error)
	ExtractLatency *prometheus.HistogramVec

	// Entry repository failures by domain
	PersistenceFailures *prometheus.CounterVec

	// Full pipeline duration
	InterpretLatency prometheus.Histogram
}

// New registers the command metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers with reg, so tests can use a private registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_commands_total",
			Help: "Total interpreted commands by outcome",
		}, []string{"outcome"}),

		Entities: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_command_entities_total",
			Help: "Total command results by domain and status",
		}, []string{"domain", "status"}),

		RoutingReasons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_command_routing_total",
			Help: "Total routed entities by routing reason",
		}, []string{"reason"}),

		SecurityFlags: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_command_security_flags_total",
			Help: "Total sanitizer flags raised by flag name",
		}, []string{"flag"}),

		ExtractLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifedash_command_extract_duration_seconds",
			Help:    "Duration of language service calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"result"}),

		PersistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifedash_command_persistence_failures_total",
			Help: "Total entry repository failures by domain",
		}, []string{"domain"}),

		InterpretLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifedash_command_interpret_duration_seconds",
			Help:    "Duration of the full interpretation pipeline",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) IncrementCommand(outcome string) {
	if m != nil {
		m.Commands.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementEntity(domain, status string) {
	if m != nil {
		m.Entities.WithLabelValues(domain, status).Inc()
	}
}

func (m *Metrics) IncrementRoutingReason(reason string) {
	if m != nil {
		m.RoutingReasons.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementSecurityFlag(flag string) {
	if m != nil {
		m.SecurityFlags.WithLabelValues(flag).Inc()
	}
}

// ObserveExtractLatency records one language service call.
func (m *Metrics) ObserveExtractLatency(result string, d time.Duration) {
	if m != nil {
		m.ExtractLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPersistenceFailure(domain string) {
	if m != nil {
		m.PersistenceFailures.WithLabelValues(domain).Inc()
	}
}

func (m *Metrics) ObserveInterpretLatency(d time.Duration) {
	if m != nil {
		m.InterpretLatency.Observe(d.Seconds())
	}
}
