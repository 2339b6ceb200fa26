package task

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeDeleted         = "deleted"
	outcomeNotFound        = "not_found"
	outcomeRunning         = "running"
	outcomeInvalidArgument = "invalid_argument"
	outcomeContextError    = "context_error"
	outcomeStoreError      = "store_error"
)

type Metrics struct {
	deletes *prometheus.CounterVec
}

// NewMetrics registers the task counters. A nil registerer yields nil, which
// is a valid no-op Metrics.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return nil
	}

	m := &Metrics{
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlcommons",
			Subsystem: "task",
			Name:      "delete_requests_total",
			Help:      "Task delete requests, by outcome.",
		}, []string{"outcome"}),
	}
	registerer.MustRegister(m.deletes)

	return m
}

func (m *Metrics) observeDelete(outcome string) {
	if m != nil {
		m.deletes.WithLabelValues(outcome).Inc()
	}
}
