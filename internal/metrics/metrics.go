package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds Prometheus metrics collectors
type Collector struct {
	eventsProducedTotal *prometheus.CounterVec
	eventsFailedTotal   *prometheus.CounterVec
	eventsRejectedTotal *prometheus.CounterVec
	eventFields         prometheus.Histogram
	producerDuration    *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector registered with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		eventsProducedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafanalytics_events_produced_total",
				Help: "Total number of analytics events produced to Kafka",
			},
			[]string{"topic", "event_type"},
		),
		eventsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafanalytics_events_failed_total",
				Help: "Total number of analytics events that failed to publish",
			},
			[]string{"topic", "event_type"},
		),
		eventsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafanalytics_events_rejected_total",
				Help: "Total number of analytics events rejected by validation",
			},
			[]string{"field"},
		),
		eventFields: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kafanalytics_event_fields",
				Help:    "Number of top-level fields per produced event",
				Buckets: prometheus.LinearBuckets(2, 4, 10),
			},
		),
		producerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kafanalytics_producer_duration_seconds",
				Help:    "Duration of event production in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
	}
}

// IncEventsProducedTotal increments the events produced counter
func (c *Collector) IncEventsProducedTotal(topic, eventType string) {
	c.eventsProducedTotal.WithLabelValues(topic, eventType).Inc()
}

// IncEventsFailedTotal increments the events failed counter
func (c *Collector) IncEventsFailedTotal(topic, eventType string) {
	c.eventsFailedTotal.WithLabelValues(topic, eventType).Inc()
}

// IncEventsRejectedTotal increments the validation rejection counter
func (c *Collector) IncEventsRejectedTotal(field string) {
	c.eventsRejectedTotal.WithLabelValues(field).Inc()
}

// ObserveEventFields records how many top-level fields an event carried
func (c *Collector) ObserveEventFields(n int) {
	c.eventFields.Observe(float64(n))
}

// ObserveProducerDuration records the duration of event production
func (c *Collector) ObserveProducerDuration(topic string, duration float64) {
	c.producerDuration.WithLabelValues(topic).Observe(duration)
}
