// Package pipeline orchestrates the per-cycle run: fetch the procedure
// database and chart catalog, extract and match, then hand the output tables
// to the configured loaders.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/approach-chart-etl/internal/domain"
	"github.com/couchcryptid/approach-chart-etl/internal/observability"
)

// ProcedureSource provides the CIFP procedure database.
type ProcedureSource interface {
	FetchProcedures(ctx context.Context) (io.ReadCloser, error)
}

// CatalogSource provides the d-TPP chart metafile and names the publication
// cycle it belongs to.
type CatalogSource interface {
	FetchChartMetafile(ctx context.Context) (io.ReadCloser, error)
	Cycle() string
}

// Loader writes the run's output tables to a destination.
type Loader interface {
	LoadAirports(ctx context.Context, airports []domain.Airport) error
	LoadApproaches(ctx context.Context, approaches []domain.ResolvedApproach) error
}

// RunSummary describes one completed run.
type RunSummary struct {
	Cycle         string
	CompletedAt   time.Time
	Airports      int
	ApproachFixes int
	ChartEntries  int
	Stats         domain.MatchStats
}

// Pipeline runs the fetch-extract-match-load cycle on a refresh interval.
type Pipeline struct {
	procedures      ProcedureSource
	catalog         CatalogSource
	loaders         []Loader
	logger          *slog.Logger
	metrics         *observability.Metrics
	refreshInterval time.Duration

	// Backoff bounds for failed runs. Overridable in tests.
	initialBackoff time.Duration
	maxBackoff     time.Duration

	ready atomic.Bool

	mu      sync.Mutex
	lastRun RunSummary
	hasRun  bool
}

// New creates a Pipeline with the given sources, loaders, and observability.
func New(procedures ProcedureSource, catalog CatalogSource, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, refreshInterval time.Duration) *Pipeline {
	return &Pipeline{
		procedures:      procedures,
		catalog:         catalog,
		loaders:         loaders,
		logger:          logger,
		metrics:         metrics,
		refreshInterval: refreshInterval,

		// Failed runs mean an FAA outage or a bad edition; retrying
		// faster than this only hammers their CDN.
		initialBackoff: 30 * time.Second,
		maxBackoff:     15 * time.Minute,
	}
}

// CheckReadiness returns nil once at least one run has completed, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastRun returns the most recent completed run summary. The boolean is
// false until the first run completes.
func (p *Pipeline) LastRun() (RunSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun, p.hasRun
}

// Run executes runs until the context is cancelled, waiting the refresh
// interval between successful runs and backing off after failures.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"cycle", p.catalog.Cycle(),
		"refresh_interval", p.refreshInterval,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := p.initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		summary, err := p.runOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("run failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, p.maxBackoff)
			continue
		}
		backoff = p.initialBackoff

		p.recordRun(summary)
		p.ready.Store(true)
		p.logger.Info("run complete",
			"cycle", summary.Cycle,
			"airports", summary.Airports,
			"approach_fixes", summary.ApproachFixes,
			"chart_entries", summary.ChartEntries,
			"resolved", summary.Stats.Resolved,
			"unresolved", summary.Stats.Unresolved,
		)

		if !sleepWithContext(ctx, p.refreshInterval) {
			return nil
		}
	}
}

// runOnce performs one complete fetch-extract-match-load pass.
func (p *Pipeline) runOnce(ctx context.Context) (RunSummary, error) {
	start := time.Now()

	airports, fixes, err := p.extractProcedures(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	entries, err := p.loadCatalog(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	idx := domain.BuildChartIndex(entries)
	resolved, stats := domain.MatchApproaches(fixes, idx, p.logger)

	p.metrics.Airports.Set(float64(len(airports)))
	p.metrics.ApproachFixes.Set(float64(len(fixes)))
	p.metrics.ChartEntries.Set(float64(len(entries)))
	p.metrics.ApproachesResolved.Set(float64(stats.Resolved))
	p.metrics.ApproachesUnresolved.Set(float64(stats.Unresolved))
	p.metrics.UnknownIdentifiers.Add(float64(stats.UnknownIdentifiers))

	for _, l := range p.loaders {
		if err := l.LoadAirports(ctx, airports); err != nil {
			return RunSummary{}, fmt.Errorf("load airports: %w", err)
		}
		if err := l.LoadApproaches(ctx, resolved); err != nil {
			return RunSummary{}, fmt.Errorf("load approaches: %w", err)
		}
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	return RunSummary{
		Cycle:         p.catalog.Cycle(),
		CompletedAt:   time.Now(),
		Airports:      len(airports),
		ApproachFixes: len(fixes),
		ChartEntries:  len(entries),
		Stats:         stats,
	}, nil
}

// extractProcedures streams the procedure database line by line into the
// extractor. Unmodeled sections are skipped silently at debug; malformed
// lines are counted and skipped without failing the run.
func (p *Pipeline) extractProcedures(ctx context.Context) ([]domain.Airport, []domain.ApproachFix, error) {
	rc, err := p.procedures.FetchProcedures(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch procedures: %w", err)
	}
	defer rc.Close()

	extractor := domain.NewExtractor(p.logger)
	scanner := bufio.NewScanner(rc)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := domain.ParseLine(line)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownLayout) {
				p.logger.Debug("skipping unmodeled record", "line", lineNo, "error", err)
				continue
			}
			p.metrics.MalformedLines.Inc()
			p.logger.Warn("malformed procedure line", "line", lineNo, "error", err)
			continue
		}
		p.metrics.RecordsParsed.Inc()

		if err := extractor.Add(rec); err != nil {
			p.metrics.MalformedLines.Inc()
			p.logger.Warn("dropping record", "line", lineNo, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read procedure database: %w", err)
	}

	p.metrics.DuplicateAirports.Add(float64(extractor.DuplicateAirports()))

	return extractor.Airports(), extractor.Fixes(), nil
}

// loadCatalog fetches and parses the chart metafile for the configured cycle.
func (p *Pipeline) loadCatalog(ctx context.Context) ([]domain.ChartEntry, error) {
	rc, err := p.catalog.FetchChartMetafile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chart metafile: %w", err)
	}
	defer rc.Close()

	return domain.ParseChartMetafile(rc, p.catalog.Cycle())
}

func (p *Pipeline) recordRun(summary RunSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRun = summary
	p.hasRun = true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
