package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingMetrics_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveOperation("book", "ok")
	m.ObserveOperation("book", "ok")
	m.ObserveOperation("book", "conflict")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operationsTotal.WithLabelValues("book", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operationsTotal.WithLabelValues("book", "conflict")))
}

func TestBookingMetrics_RemindersAndSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveRemindersCreated(3)
	m.ObserveRemindersCreated(0)
	m.ObserveSweepDuration(0.25)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.remindersCreated))

	families, err := reg.Gather()
	require.NoError(t, err)

	var histogram *dto.Histogram
	for _, f := range families {
		if f.GetName() == "clinic_reminders_sweep_duration_seconds" {
			histogram = f.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(1), histogram.GetSampleCount())
}

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveOperation("book", "ok")
	m.ObserveRemindersCreated(1)
	m.ObserveSweepDuration(1)
}
