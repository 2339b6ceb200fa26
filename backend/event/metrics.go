package event

import "github.com/prometheus/client_golang/prometheus"

type busMetrics struct {
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

func newBusMetrics(registerer prometheus.Registerer) *busMetrics {
	if registerer == nil {
		return nil
	}

	newCounter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlcommons",
			Subsystem: "eventbus",
			Name:      name,
			Help:      help,
		}, []string{"event_type"})
	}

	m := &busMetrics{
		published: newCounter("events_published_total", "Events published, by event type."),
		delivered: newCounter("events_delivered_total", "Events delivered to a subscriber, by event type."),
		dropped:   newCounter("events_dropped_total", "Events dropped because a queue or subscriber buffer was full."),
	}
	registerer.MustRegister(m.published, m.delivered, m.dropped)

	return m
}

func (m *busMetrics) incPublished(eventType string) {
	if m != nil {
		m.published.WithLabelValues(eventType).Inc()
	}
}

func (m *busMetrics) incDelivered(eventType string) {
	if m != nil {
		m.delivered.WithLabelValues(eventType).Inc()
	}
}

func (m *busMetrics) incDropped(eventType string) {
	if m != nil {
		m.dropped.WithLabelValues(eventType).Inc()
	}
}
