package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("orders:placed").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("orders:placed").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("orders:placed", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("orders:placed", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("orders:placed")))
}

func TestSetLowStock(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetLowStock(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.lowStock))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.SetLowStock(3)
	err := errors.New("x")
	assert.Equal(t, err, m.Track("any").End(err))
}
