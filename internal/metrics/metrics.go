// Package metrics exposes Prometheus collectors for the Todo service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics on its own registry. It is safe for concurrent use.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	eventsPublished  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector registers the collectors on a fresh registry. recordCount, when
// non-nil, backs the todo_records gauge.
func NewCollector(recordCount func() int) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	c := &Collector{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "todo_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_events_published_total",
				Help: "Change events delivered to sinks, by outcome",
			},
			[]string{"sink", "result"},
		),
		registry: reg,
	}
	if recordCount != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "todo_records",
			Help: "Number of live todo records",
		}, func() float64 { return float64(recordCount()) })
	}
	return c
}

// RequestStarted increments the in-flight gauge.
func (c *Collector) RequestStarted() {
	c.requestsInFlight.Inc()
}

// RequestFinished records a completed request.
func (c *Collector) RequestFinished(method, route string, status int, d time.Duration) {
	c.requestsInFlight.Dec()
	if route == "" {
		route = "unmatched"
	}
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordEvent counts one event delivery attempt.
func (c *Collector) RecordEvent(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.eventsPublished.WithLabelValues(sink, result).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
