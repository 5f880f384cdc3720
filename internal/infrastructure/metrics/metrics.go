package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking ledger and reminder sweeps.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	operationsTotal  *prometheus.CounterVec
	remindersCreated prometheus.Counter
	sweepDuration    prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Ledger operations by name and result",
		}, []string{"operation", "result"}),
		remindersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "reminders",
			Name:      "created_total",
			Help:      "Reminder notifications created",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "reminders",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of reminder sweeps across all patients",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.remindersCreated, m.sweepDuration)
	return m
}

func (m *BookingMetrics) ObserveOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *BookingMetrics) ObserveRemindersCreated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.remindersCreated.Add(float64(count))
}

func (m *BookingMetrics) ObserveSweepDuration(seconds float64) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(seconds)
}
