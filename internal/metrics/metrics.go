// Package metrics exposes Prometheus instrumentation for the ingestion service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons.
const (
	ReasonValidation   = "validation"
	ReasonUnauthorized = "unauthorized"
	ReasonInternal     = "internal"
)

// knownEventTypes keeps label cardinality bounded; anything else counts as "custom".
var knownEventTypes = map[string]struct{}{
	"pageview":           {},
	"click":              {},
	"form_submission":    {},
	"performance":        {},
	"performance_metric": {},
	"page_visibility":    {},
	"page_exit":          {},
}

// Recorder owns a registry and the service's collectors.
type Recorder struct {
	registry *prometheus.Registry

	eventsAccepted  *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	websites        prometheus.Gauge
}

type options struct {
	namespace      string
	runtimeMetrics bool
}

// Option configures New.
type Option func(*options)

// WithNamespace sets the metric name prefix (default "analytics").
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithRuntimeMetrics also registers the Go runtime and process collectors.
func WithRuntimeMetrics(enabled bool) Option {
	return func(o *options) { o.runtimeMetrics = enabled }
}

// New creates a Recorder on a fresh registry, so tests can build as many as they need.
func New(opts ...Option) *Recorder {
	o := options{namespace: "analytics"}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	if o.runtimeMetrics {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		eventsAccepted: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "events_accepted_total",
			Help:      "Tracked events persisted, by event type.",
		}, []string{"event_type"}),
		eventsRejected: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "events_rejected_total",
			Help:      "Tracked events refused, by reason.",
		}, []string{"reason"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route and method.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "method"}),
		websites: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "registry_websites",
			Help:      "Websites currently loaded in the registry.",
		}),
	}
}

// EventAccepted counts one persisted event.
func (r *Recorder) EventAccepted(eventType string) {
	if r == nil {
		return
	}
	if _, ok := knownEventTypes[eventType]; !ok {
		eventType = "custom"
	}
	r.eventsAccepted.WithLabelValues(eventType).Inc()
}

// EventRejected counts one refused event.
func (r *Recorder) EventRejected(reason string) {
	if r == nil {
		return
	}
	r.eventsRejected.WithLabelValues(reason).Inc()
}

// ObserveRequest records one finished HTTP request.
func (r *Recorder) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// SetRegisteredWebsites reports the size of the website registry.
func (r *Recorder) SetRegisteredWebsites(n int) {
	if r == nil {
		return
	}
	r.websites.Set(float64(n))
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
