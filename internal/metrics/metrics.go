// Package metrics exposes Prometheus counters for the server, the cached
// source and the compiler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives operational measurements.
type Recorder interface {
	IncRequests(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(kind string)
	IncCacheMisses(kind string)
	ObserveCompile(duration time.Duration, activities int)
}

// Prometheus records into a Prometheus registry.
type Prometheus struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	compileDuration prometheus.Histogram
	compiledTotal   prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_timeline_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "habit_timeline_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_timeline_cache_hits_total",
			Help: "Total number of source cache hits",
		}, []string{"kind"}),

		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "habit_timeline_cache_misses_total",
			Help: "Total number of source cache misses",
		}, []string{"kind"}),

		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "habit_timeline_compile_duration_seconds",
			Help:    "Time spent compiling a day timeline",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),

		compiledTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "habit_timeline_compiled_activities_total",
			Help: "Activities fed into the timeline compiler",
		}),
	}
}

func (m *Prometheus) IncRequests(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Prometheus) IncCacheHits(kind string) {
	m.cacheHits.WithLabelValues(kind).Inc()
}

func (m *Prometheus) IncCacheMisses(kind string) {
	m.cacheMisses.WithLabelValues(kind).Inc()
}

func (m *Prometheus) ObserveCompile(duration time.Duration, activities int) {
	m.compileDuration.Observe(duration.Seconds())
	m.compiledTotal.Add(float64(activities))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop returns a Recorder that discards everything.
func Noop() Recorder { return noop{} }

type noop struct{}

func (noop) IncRequests(_ string, _ int)                      {}
func (noop) ObserveRequestDuration(_ string, _ time.Duration) {}
func (noop) IncCacheHits(_ string)                            {}
func (noop) IncCacheMisses(_ string)                          {}
func (noop) ObserveCompile(_ time.Duration, _ int)            {}
