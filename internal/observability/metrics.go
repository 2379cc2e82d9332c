package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stage labels for pipeline metrics.
const (
	StageFetch     = "fetch"
	StageWrite     = "write"
	StageClean     = "clean"
	StageSummarize = "summarize"
)

var (
	registry *prometheus.Registry

	// Open-Meteo call count by status label. Watch for: client_error/server_error runs.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Open-Meteo latency per request. Watch for: p95 creeping toward the client timeout.
	WeatherAPIDuration *prometheus.HistogramVec

	// Rows seen per stage and outcome (fetched, written, kept, dropped, summarized).
	PipelineRowsTotal *prometheus.CounterVec

	// Wall time of each stage.
	PipelineStageDuration *prometheus.HistogramVec

	// Completed runs by result (success, fetch_failure, empty_dataset, error).
	PipelineRunsTotal *prometheus.CounterVec

	// Unrecovered errors by category.
	PipelineErrorsTotal *prometheus.CounterVec

	// Unix time of the last run that reached the summary stage.
	LastSuccessTimestamp prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of Open-Meteo API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Open-Meteo API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
	PipelineRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelineRowsTotal",
			Help: "Rows processed per pipeline stage and outcome",
		},
		[]string{"stage", "outcome"},
	)
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipelineStageDurationSeconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelineRunsTotal",
			Help: "Pipeline runs by result",
		},
		[]string{"result"},
	)
	PipelineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipelineErrorsTotal",
			Help: "Unrecovered pipeline errors by category",
		},
		[]string{"category"},
	)
	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipelineLastSuccessTimestampSeconds",
			Help: "Unix time of the last successful pipeline run",
		},
	)

	registry.MustRegister(
		WeatherAPICallsTotal, WeatherAPIDuration,
		PipelineRowsTotal, PipelineStageDuration,
		PipelineRunsTotal, PipelineErrorsTotal,
		LastSuccessTimestamp,
	)
}

// RecordRows adds n rows to the stage/outcome counter. Zero is a no-op.
func RecordRows(stage, outcome string, n int) {
	if n <= 0 {
		return
	}
	PipelineRowsTotal.WithLabelValues(stage, outcome).Add(float64(n))
}

// ObserveStage records how long a stage took, in seconds.
func ObserveStage(stage string, seconds float64) {
	PipelineStageDuration.WithLabelValues(stage).Observe(seconds)
}

// WriteTextfile dumps the registry in Prometheus text format for the
// node_exporter textfile collector. The write goes through a temp file and a rename.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
