package qa

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	answers *prometheus.HistogramVec
}

// NewMetrics registers the answer latency histogram. A nil registerer yields a
// nil, no-op Metrics.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return nil
	}

	m := &Metrics{
		answers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mlcommons",
			Subsystem: "qa",
			Name:      "answer_duration_seconds",
			Help:      "Time spent generating answers, by provider and outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"provider", "outcome"}),
	}
	registerer.MustRegister(m.answers)

	return m
}

func (m *Metrics) observeAnswer(provider, outcome string, elapsed time.Duration) {
	if m != nil {
		m.answers.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
	}
}
