package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/approach-chart-etl/internal/adapter/faa"
	"github.com/couchcryptid/approach-chart-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/approach-chart-etl/internal/adapter/kafka"
	"github.com/couchcryptid/approach-chart-etl/internal/config"
	"github.com/couchcryptid/approach-chart-etl/internal/export"
	"github.com/couchcryptid/approach-chart-etl/internal/observability"
	"github.com/couchcryptid/approach-chart-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := faa.NewClient(cfg, metrics, logger)

	var loaders []pipeline.Loader
	var kafkaWriter *kafkaadapter.Writer

	if cfg.ExportDir != "" {
		exporter, err := export.NewCSVExporter(cfg.ExportDir, logger)
		if err != nil {
			logger.Error("failed to create csv exporter", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, exporter)
		logger.Info("csv export enabled", "dir", cfg.ExportDir)
	}
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka sink enabled",
			"brokers", cfg.KafkaBrokers,
			"airport_topic", cfg.KafkaAirportTopic,
			"approach_topic", cfg.KafkaApproachTopic,
		)
	}

	p := pipeline.New(source, source, loaders, logger, metrics, cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, statusAdapter{p}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// statusAdapter exposes the pipeline's last run on the /statusz endpoint.
type statusAdapter struct {
	p *pipeline.Pipeline
}

func (s statusAdapter) LastRun() (httpadapter.RunStatus, bool) {
	run, ok := s.p.LastRun()
	if !ok {
		return httpadapter.RunStatus{}, false
	}
	return httpadapter.RunStatus{
		Cycle:                run.Cycle,
		CompletedAt:          run.CompletedAt,
		Airports:             run.Airports,
		ApproachFixes:        run.ApproachFixes,
		ChartEntries:         run.ChartEntries,
		ApproachesResolved:   run.Stats.Resolved,
		ApproachesUnresolved: run.Stats.Unresolved,
	}, true
}
