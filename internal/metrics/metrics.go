// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager groups the HTTP and domain metrics of the server.
type Manager struct {
	CounterRequests     *prometheus.CounterVec
	GaugeInFlight       prometheus.Gauge
	HistRequestDuration prometheus.Histogram
	CounterPanics       prometheus.Counter

	CounterBlocksImported *prometheus.CounterVec
	CounterImportErrors   prometheus.Counter
	CounterSetsLogged     prometheus.Counter
	CounterExercisesAdded prometheus.Counter
	CounterCacheHits      prometheus.Counter
	CounterCacheMisses    prometheus.Counter
}

// NewManager registers all collectors on reg.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		GaugeInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_panics_total",
			Help:      "Recovered handler panics.",
		}),
		CounterBlocksImported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "blocks_imported_total",
			Help:      "Blocks imported by source format.",
		}, []string{"format"}),
		CounterImportErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "import_errors_total",
			Help:      "Rejected block imports.",
		}),
		CounterSetsLogged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_logged_total",
			Help:      "Sets logged against sessions.",
		}),
		CounterExercisesAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercises_added_total",
			Help:      "Exercises added to running blocks.",
		}),
		CounterCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "whiteboard_cache_hits_total",
			Help:      "Whiteboard renders served from cache.",
		}),
		CounterCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "whiteboard_cache_misses_total",
			Help:      "Whiteboard renders computed.",
		}),
	}
}

// NewTestManagerAndRegistry returns a manager on a fresh registry.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("test", "blockboard", reg), reg
}

// SetupPrometheus builds a registry with the runtime collectors plus any
// extra collectors, such as the database pool collector.
func SetupPrometheus(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extra {
		reg.MustRegister(c)
	}
	return reg
}
