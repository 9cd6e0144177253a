// Package metrics holds the prometheus collectors of the dispatch pipeline.
// All recording methods are safe on a nil *Metrics, so tests and tools can pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fulfillment"

type Metrics struct {
	registry *prometheus.Registry

	ShipmentsPacked     prometheus.Counter
	ContainersAllocated prometheus.Counter
	PackingFailures     *prometheus.CounterVec
	DocumentsDelivered  *prometheus.CounterVec
	DeliveryDuration    prometheus.Histogram
	CircuitBreakerState *prometheus.GaugeVec
	JobRuns             *prometheus.CounterVec
	MessagesConsumed    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		ShipmentsPacked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_packed_total",
			Help:      "Shipments created by the packing engine.",
		}),
		ContainersAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "container_ids_allocated_total",
			Help:      "Container ids drawn from the durable counter.",
		}),
		PackingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packing_failures_total",
			Help:      "Orders rejected during packing, by reason.",
		}, []string{"reason"}),
		DocumentsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_delivered_total",
			Help:      "Dispatch document delivery outcomes.",
		}, []string{"status"}),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent in the transfer protocol per document.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled sweep runs by job and outcome.",
		}, []string{"job", "outcome"}),
		MessagesConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Order-ready messages by acknowledgement.",
		}, []string{"ack"}),
	}

	registry.MustRegister(
		m.ShipmentsPacked,
		m.ContainersAllocated,
		m.PackingFailures,
		m.DocumentsDelivered,
		m.DeliveryDuration,
		m.CircuitBreakerState,
		m.JobRuns,
		m.MessagesConsumed,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordPacking(shipments int) {
	if m == nil || shipments <= 0 {
		return
	}
	m.ShipmentsPacked.Add(float64(shipments))
	m.ContainersAllocated.Add(float64(shipments))
}

func (m *Metrics) RecordPackingFailure(reason string) {
	if m == nil {
		return
	}
	m.PackingFailures.WithLabelValues(reason).Inc()
}

// RecordDelivery counts one outcome. A zero elapsed time (skipped documents) is not observed.
func (m *Metrics) RecordDelivery(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsDelivered.WithLabelValues(status).Inc()
	if elapsed > 0 {
		m.DeliveryDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) SetCircuitBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) RecordJobRun(job, outcome string) {
	if m == nil {
		return
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *Metrics) RecordMessage(ack string) {
	if m == nil {
		return
	}
	m.MessagesConsumed.WithLabelValues(ack).Inc()
}
