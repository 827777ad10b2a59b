// Package metrics exposes Prometheus counters for the storage reservation services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stowaway"

// Outcome labels shared by the service counters.
const (
	OutcomeSuccess      = "success"
	OutcomeValidation   = "validation"
	OutcomeConflict     = "conflict"
	OutcomeNotFound     = "not_found"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	reservationOps   *prometheus.CounterVec
	unitOps          *prometheus.CounterVec
	shippingLookups  *prometheus.CounterVec
	shippingLatency  prometheus.Histogram
	kafkaMessages    *prometheus.CounterVec
	lockWaitDuration prometheus.Histogram
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		reservationOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_operations_total",
			Help:      "Reservation lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		unitOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_operations_total",
			Help:      "Storage unit catalog writes by outcome.",
		}, []string{"operation", "outcome"}),
		shippingLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_rate_lookups_total",
			Help:      "Postal rate lookups by outcome.",
		}, []string{"outcome"}),
		shippingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shipping_rate_latency_seconds",
			Help:      "Postal rate API latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction and outcome.",
		}, []string{"direction", "outcome"}),
		lockWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_lock_wait_seconds",
			Help:      "Time spent acquiring a unit lock.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.reservationOps,
		c.unitOps,
		c.shippingLookups,
		c.shippingLatency,
		c.kafkaMessages,
		c.lockWaitDuration,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) RecordReservation(operation, outcome string) {
	c.reservationOps.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordUnit(operation, outcome string) {
	c.unitOps.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordShippingLookup(outcome string, duration time.Duration) {
	c.shippingLookups.WithLabelValues(outcome).Inc()
	c.shippingLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordKafkaMessage(direction, outcome string) {
	c.kafkaMessages.WithLabelValues(direction, outcome).Inc()
}

func (c *Collector) RecordLockWait(duration time.Duration) {
	c.lockWaitDuration.Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
