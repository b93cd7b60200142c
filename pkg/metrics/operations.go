package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// OperationMetrics records outcome and latency of user service operations.
type OperationMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewOperationMetrics registers the operation metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "user_operation_duration_seconds",
		Help:    "Duration of user service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_operation_total",
		Help: "User service operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, total)
	return &OperationMetrics{duration: duration, total: total}
}

// Observe records one finished operation.
func (m *OperationMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.total.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
