package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementCommand("processed")
		m.IncrementEntity("health", "saved")
		m.IncrementRoutingReason("direct_match")
		m.IncrementSecurityFlag("script")
		m.ObserveExtractLatency("ok", time.Millisecond)
		m.IncrementPersistenceFailure("health")
		m.ObserveInterpretLatency(time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementCommand("processed")
	m.IncrementCommand("processed")
	m.IncrementEntity("health", "saved")
	m.IncrementSecurityFlag("script")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Entities.WithLabelValues("health", "saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecurityFlags.WithLabelValues("script")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("health")))
}
