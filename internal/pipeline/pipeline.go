package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-pipeline/internal/cleaning"
	"github.com/kjstillabower/weather-pipeline/internal/client"
	"github.com/kjstillabower/weather-pipeline/internal/models"
	"github.com/kjstillabower/weather-pipeline/internal/observability"
	"github.com/kjstillabower/weather-pipeline/internal/storage"
	"github.com/kjstillabower/weather-pipeline/internal/summary"
	"github.com/kjstillabower/weather-pipeline/internal/validation"
)

// Config selects the point, window, files and validity rules of a run.
type Config struct {
	Query     client.Query
	RawPath   string
	CleanPath string
	Rules     cleaning.Rules
}

// Report describes a finished run. Summary is nil when the cleaned table was empty.
type Report struct {
	RunID   string
	RawRows int
	Kept    int
	Dropped int
	Summary *models.Summary
}

// Pipeline runs fetch, write, clean and summarize in sequence.
type Pipeline struct {
	client client.WeatherClient
	cfg    Config
	logger *zap.Logger
	out    io.Writer
	newID  func() string
}

// New returns a Pipeline writing status lines and the summary to out.
func New(c client.WeatherClient, cfg Config, logger *zap.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		client: c,
		cfg:    cfg,
		logger: logger,
		out:    out,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run executes one pass. A non-200 fetch returns an error wrapping
// client.ErrFetchFailure before any file is written. An empty cleaned table
// is not an error: the report has a nil Summary. Any other failure stops the
// run and leaves files already written in place.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: p.newID()}
	logger := observability.WithRunID(p.logger, report.RunID)
	ctx = client.WithCorrelationID(ctx, report.RunID)

	logger.Info("pipeline started",
		zap.Float64("latitude", p.cfg.Query.Latitude),
		zap.Float64("longitude", p.cfg.Query.Longitude),
		zap.Int("past_days", p.cfg.Query.PastDays),
	)

	var resp models.ForecastResponse
	err := p.stage(ctx, observability.StageFetch, func() error {
		var err error
		resp, err = p.client.FetchHourly(ctx, p.cfg.Query)
		return err
	})
	if err != nil {
		if errors.Is(err, client.ErrFetchFailure) {
			logger.Warn("fetch failed", zap.Error(err))
			observability.PipelineRunsTotal.WithLabelValues("fetch_failure").Inc()
			p.println("Failed to fetch data")
			return report, err
		}
		return report, p.fail(logger, "fetch", err)
	}

	series, err := validation.ValidateResponse(resp)
	if err != nil {
		return report, p.fail(logger, "fetch", err)
	}
	observability.RecordRows(observability.StageFetch, "fetched", series.Len())
	logger.Info("fetched hourly series", zap.Int("rows", series.Len()), zap.String("timezone", resp.Timezone))

	err = p.stage(ctx, observability.StageWrite, func() error {
		var err error
		report.RawRows, err = storage.WriteSeries(p.cfg.RawPath, series)
		return err
	})
	if err != nil {
		return report, p.fail(logger, "write", err)
	}
	observability.RecordRows(observability.StageWrite, "written", report.RawRows)
	logger.Info("raw data written", zap.String("path", p.cfg.RawPath), zap.Int("rows", report.RawRows))
	p.println("Weather data saved to", p.cfg.RawPath)

	var res cleaning.Result
	err = p.stage(ctx, observability.StageClean, func() error {
		var err error
		res, err = cleaning.Clean(p.cfg.RawPath, p.cfg.CleanPath, p.cfg.Rules)
		return err
	})
	if err != nil {
		return report, p.fail(logger, "clean", err)
	}
	report.Kept, report.Dropped = res.Kept, res.Dropped
	observability.RecordRows(observability.StageClean, "kept", res.Kept)
	observability.RecordRows(observability.StageClean, "dropped", res.Dropped)
	logger.Info("cleaned data written",
		zap.String("path", p.cfg.CleanPath),
		zap.Int("kept", res.Kept),
		zap.Int("dropped", res.Dropped),
	)
	p.println("Cleaned data saved to", p.cfg.CleanPath)

	var s models.Summary
	err = p.stage(ctx, observability.StageSummarize, func() error {
		var err error
		s, err = summary.Summarize(p.cfg.CleanPath)
		return err
	})
	if errors.Is(err, summary.ErrEmptyDataset) {
		logger.Warn("no data to summarize", zap.String("path", p.cfg.CleanPath))
		observability.PipelineRunsTotal.WithLabelValues("empty_dataset").Inc()
		p.println(summary.NoDataMessage)
		return report, nil
	}
	if err != nil {
		return report, p.fail(logger, "summarize", err)
	}
	observability.RecordRows(observability.StageSummarize, "summarized", s.Count)
	report.Summary = &s

	if err := summary.Report(p.out, s); err != nil {
		return report, p.fail(logger, "summarize", err)
	}

	observability.PipelineRunsTotal.WithLabelValues("success").Inc()
	observability.LastSuccessTimestamp.SetToCurrentTime()
	logger.Info("pipeline finished",
		zap.Int("records", s.Count),
		zap.Float64("avg_temperature", s.AvgTemperature),
	)
	return report, nil
}

// stage times fn. A canceled context stops the run before the stage starts.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	observability.ObserveStage(name, time.Since(start).Seconds())
	return err
}

func (p *Pipeline) fail(logger *zap.Logger, stage string, err error) error {
	category := client.CategorizeError(err)
	observability.PipelineErrorsTotal.WithLabelValues(string(category)).Inc()
	observability.PipelineRunsTotal.WithLabelValues("error").Inc()
	logger.Error("pipeline stage failed",
		zap.String("stage", stage),
		zap.String("category", string(category)),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", stage, err)
}

func (p *Pipeline) println(a ...interface{}) {
	_, _ = fmt.Fprintln(p.out, a...)
}
