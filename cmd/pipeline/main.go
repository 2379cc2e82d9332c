package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-pipeline/internal/client"
	"github.com/kjstillabower/weather-pipeline/internal/config"
	"github.com/kjstillabower/weather-pipeline/internal/observability"
	"github.com/kjstillabower/weather-pipeline/internal/pipeline"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewOpenMeteoClient(cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(weatherClient, pipeline.Config{
		Query: client.Query{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
			PastDays:  cfg.PastDays,
		},
		RawPath:   cfg.RawPath,
		CleanPath: cfg.CleanPath,
		Rules:     cfg.Rules,
	}, logger, os.Stdout)

	_, runErr := p.Run(ctx)

	if err := observability.FlushTelemetry(context.Background(), logger, cfg.MetricsTextfile); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	switch {
	case runErr == nil, errors.Is(runErr, client.ErrFetchFailure):
		// handled: fetch failure exits cleanly with no files written
	default:
		logger.Fatal("pipeline", zap.Error(runErr))
	}
}
