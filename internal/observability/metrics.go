package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cityinfo"

// Metrics holds the Prometheus counters, histograms, and gauges for a catalog run.
type Metrics struct {
	// Registry the collectors are registered with. Gathered by the metrics
	// textfile export.
	Registry prometheus.Gatherer

	RunRunning       prometheus.Gauge
	RunDuration      prometheus.Gauge
	DistrictsWritten prometheus.Gauge

	// Catalog fetch metrics.
	FetchAttempts    *prometheus.CounterVec // labels: outcome={ok,error,empty}
	FetchDuration    prometheus.Histogram
	ListFetches      *prometheus.CounterVec // labels: level={province,city,district}, outcome={ok,empty}
	NodesSkipped     *prometheus.CounterVec // labels: level={province,city}
	ProvinceFallback prometheus.Counter
	RecordsParsed    *prometheus.CounterVec // labels: level

	// Validation metrics.
	ValidationEnabled  prometheus.Gauge
	Validations        *prometheus.CounterVec // labels: outcome={valid,http_error,api_error,request_exception}
	ValidationCache    *prometheus.CounterVec // labels: result={hit,miss}
	ValidationDuration prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.Registry = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.Registry = reg
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_running",
			Help:      "1 while the catalog run is active, 0 when finished.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last completed catalog run.",
		}),
		DistrictsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "districts_written",
			Help:      "Number of district entries in the last written catalog.",
		}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Catalog HTTP attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single catalog HTTP attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		ListFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_fetches_total",
			Help:      "List fetches after retries by level and outcome.",
		}, []string{"level", "outcome"}),
		NodesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_skipped_total",
			Help:      "Provinces or cities skipped because their child list was empty.",
		}, []string{"level"}),
		ProvinceFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "province_fallback_total",
			Help:      "Runs that fell back to the built-in province table.",
		}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Well-formed records parsed by level.",
		}, []string{"level"}),
		ValidationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_enabled",
			Help:      "1 when weather codes are validated against the live API, 0 otherwise.",
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Weather code validations by outcome.",
		}, []string{"outcome"}),
		ValidationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_cache_total",
			Help:      "Validation cache lookups by result.",
		}, []string{"result"}),
		ValidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Validation API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RunRunning,
		m.RunDuration,
		m.DistrictsWritten,
		m.FetchAttempts,
		m.FetchDuration,
		m.ListFetches,
		m.NodesSkipped,
		m.ProvinceFallback,
		m.RecordsParsed,
		m.ValidationEnabled,
		m.Validations,
		m.ValidationCache,
		m.ValidationDuration,
	}
}

// WriteTextfile dumps the current metric values in the node_exporter
// textfile format. Batch runs use it instead of being scraped.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
