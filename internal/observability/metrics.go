package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// chart-linking ETL pipeline.
type Metrics struct {
	RecordsParsed      prometheus.Counter
	MalformedLines     prometheus.Counter
	DuplicateAirports  prometheus.Counter
	UnknownIdentifiers prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// Per-run table sizes and match coverage.
	Airports             prometheus.Gauge
	ApproachFixes        prometheus.Gauge
	ChartEntries         prometheus.Gauge
	ApproachesResolved   prometheus.Gauge
	ApproachesUnresolved prometheus.Gauge

	RunDuration prometheus.Histogram

	// FAA source fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: resource={edition,cifp,metafile}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: resource={edition,cifp,metafile}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chart_etl",
			Name:      "records_parsed_total",
			Help:      "Total procedure database lines parsed into records.",
		}),
		MalformedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chart_etl",
			Name:      "malformed_lines_total",
			Help:      "Total procedure database lines rejected by the layout registry.",
		}),
		DuplicateAirports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chart_etl",
			Name:      "duplicate_airports_total",
			Help:      "Total airport records that re-used an already seen identifier.",
		}),
		UnknownIdentifiers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chart_etl",
			Name:      "unknown_identifiers_total",
			Help:      "Total approach identifiers with no decoder table entry.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		Airports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "airports",
			Help:      "Airport rows produced by the last run.",
		}),
		ApproachFixes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "approach_fixes",
			Help:      "Final approach fix rows produced by the last run.",
		}),
		ChartEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "chart_entries",
			Help:      "Chart catalog rows produced by the last run.",
		}),
		ApproachesResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "approaches_resolved",
			Help:      "Approaches linked to a chart in the last run.",
		}),
		ApproachesUnresolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chart_etl",
			Name:      "approaches_unresolved",
			Help:      "Approaches with no catalog hit in the last run. Coverage signal, not an error.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chart_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete parse-catalog-match-load run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chart_etl",
			Name:      "fetch_requests_total",
			Help:      "FAA source fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chart_etl",
			Name:      "fetch_duration_seconds",
			Help:      "FAA source fetch duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"resource"}),
	}

	prometheus.MustRegister(
		m.RecordsParsed,
		m.MalformedLines,
		m.DuplicateAirports,
		m.UnknownIdentifiers,
		m.PipelineRunning,
		m.Airports,
		m.ApproachFixes,
		m.ChartEntries,
		m.ApproachesResolved,
		m.ApproachesUnresolved,
		m.RunDuration,
		m.FetchRequests,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsParsed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "chart_etl", Name: "records_parsed_total"}),
		MalformedLines:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "chart_etl", Name: "malformed_lines_total"}),
		DuplicateAirports:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "chart_etl", Name: "duplicate_airports_total"}),
		UnknownIdentifiers:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "chart_etl", Name: "unknown_identifiers_total"}),
		PipelineRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "pipeline_running"}),
		Airports:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "airports"}),
		ApproachFixes:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "approach_fixes"}),
		ChartEntries:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "chart_entries"}),
		ApproachesResolved:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "approaches_resolved"}),
		ApproachesUnresolved: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "chart_etl", Name: "approaches_unresolved"}),
		RunDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "chart_etl", Name: "run_duration_seconds"}),
		FetchRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "chart_etl", Name: "fetch_requests_total"}, []string{"resource", "outcome"}),
		FetchDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "chart_etl", Name: "fetch_duration_seconds"}, []string{"resource"}),
	}
}
