package observability

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Usable verifies that all metrics accept the label dimensions
// used by the client and pipeline packages.
func TestMetrics_Usable(t *testing.T) {
	WeatherAPICallsTotal.WithLabelValues("success").Inc()
	WeatherAPIDuration.WithLabelValues("success").Observe(0.1)
	PipelineRowsTotal.WithLabelValues(StageClean, "kept").Inc()
	PipelineStageDuration.WithLabelValues(StageFetch).Observe(0.2)
	PipelineRunsTotal.WithLabelValues("success").Inc()
	PipelineErrorsTotal.WithLabelValues("parsing").Inc()
	LastSuccessTimestamp.SetToCurrentTime()
}

func TestRecordRows(t *testing.T) {
	c := PipelineRowsTotal.WithLabelValues(StageWrite, "written")
	before := testutil.ToFloat64(c)

	RecordRows(StageWrite, "written", 3)
	RecordRows(StageWrite, "written", 0)

	if got := testutil.ToFloat64(c) - before; got != 3 {
		t.Errorf("pipelineRowsTotal delta = %v, want 3", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	ObserveStage(StageSummarize, 0.01)
	path := filepath.Join(t.TempDir(), "pipeline.prom")

	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "pipelineStageDurationSeconds") {
		t.Error("textfile should contain pipelineStageDurationSeconds")
	}
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "pipeline.prom")
	if err := WriteTextfile(path); err == nil {
		t.Fatal("WriteTextfile() expected error for missing directory, got nil")
	}
}

func TestFlushTelemetry_WritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.prom")
	if err := FlushTelemetry(context.Background(), nil, path); err != nil {
		t.Fatalf("FlushTelemetry() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("textfile not written: %v", err)
	}
}

func TestFlushTelemetry_NoTextfile(t *testing.T) {
	if err := FlushTelemetry(context.Background(), nil, ""); err != nil {
		t.Fatalf("FlushTelemetry() error = %v", err)
	}
}
