package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus collectors the services report to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	conditions  *prometheus.CounterVec
	actions     *prometheus.CounterVec
	requests    *prometheus.HistogramVec
	lockWaiting prometheus.Histogram
}

// NewMetrics registers the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_sequence_mutations_total",
				Help: "Total number of sequence graph mutations",
			},
			[]string{"operation"},
		),
		conditions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_conditions_processed_total",
				Help: "Total number of conditions fired for new hires",
			},
			[]string{"condition_type"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_actions_dispatched_total",
				Help: "Total number of side-effect actions handed to the dispatcher",
			},
			[]string{"type", "result"},
		),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onboard_http_request_duration_seconds",
				Help:    "Duration of admin API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		lockWaiting: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_lock_wait_seconds",
			Help:    "Time spent waiting for a sequence lock",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.conditions,
		m.actions,
		m.requests,
		m.lockWaiting,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Mutation counts a sequence graph mutation.
func (m *Metrics) Mutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

// ConditionProcessed counts a fired condition.
func (m *Metrics) ConditionProcessed(conditionType string) {
	if m == nil {
		return
	}
	m.conditions.WithLabelValues(conditionType).Inc()
}

// ActionDispatched counts a dispatched action.
func (m *Metrics) ActionDispatched(actionType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.actions.WithLabelValues(actionType, result).Inc()
}

// ObserveRequest records the duration of an HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// ObserveLockWait records how long a caller waited for a lock.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWaiting.Observe(d.Seconds())
}
