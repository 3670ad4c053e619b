package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the job.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec // labels: outcome={success,error,lookup_miss}
	RunDuration         prometheus.Histogram
	LastSuccess         prometheus.Gauge
	StationsRequested   prometheus.Counter
	ObservationsFetched prometheus.Counter
	RecordsDropped      prometheus.Counter
	RecordsSkipped      prometheus.Counter
	LinesPublished      prometheus.Counter
	DeltasDiscarded     prometheus.Counter

	// AWDB client metrics.
	AWDBRequests  *prometheus.CounterVec   // labels: endpoint={data,stations}, outcome={success,error}
	AWDBDuration  *prometheus.HistogramVec // labels: endpoint={data,stations}
	MetadataCache *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snotel_shef",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a complete scrape-diff-publish run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 180, 300, 600},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snotel_shef",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		StationsRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "stations_requested_total",
			Help:      "Stations requested from AWDB.",
		}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "observations_fetched_total",
			Help:      "Observations returned by AWDB.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "records_dropped_total",
			Help:      "Observations dropped for lack of station metadata.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "records_skipped_total",
			Help:      "Records the encoder skipped for missing fields.",
		}),
		LinesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "lines_published_total",
			Help:      "Body lines written to published delta files.",
		}),
		DeltasDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "deltas_discarded_total",
			Help:      "Runs whose delta was too small to publish.",
		}),
		AWDBRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "awdb_requests_total",
			Help:      "AWDB requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AWDBDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "snotel_shef",
			Name:      "awdb_request_duration_seconds",
			Help:      "AWDB request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		MetadataCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_shef",
			Name:      "metadata_cache_total",
			Help:      "Station metadata cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.LastSuccess,
		m.StationsRequested,
		m.ObservationsFetched,
		m.RecordsDropped,
		m.RecordsSkipped,
		m.LinesPublished,
		m.DeltasDiscarded,
		m.AWDBRequests,
		m.AWDBDuration,
		m.MetadataCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "runs_total"}, []string{"outcome"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "snotel_shef", Name: "run_duration_seconds"}),
		LastSuccess:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "snotel_shef", Name: "last_success_timestamp_seconds"}),
		StationsRequested:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "stations_requested_total"}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "observations_fetched_total"}),
		RecordsDropped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "records_dropped_total"}),
		RecordsSkipped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "records_skipped_total"}),
		LinesPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "lines_published_total"}),
		DeltasDiscarded:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "deltas_discarded_total"}),
		AWDBRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "awdb_requests_total"}, []string{"endpoint", "outcome"}),
		AWDBDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "snotel_shef", Name: "awdb_request_duration_seconds"}, []string{"endpoint"}),
		MetadataCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "snotel_shef", Name: "metadata_cache_total"}, []string{"result"}),
	}
}
