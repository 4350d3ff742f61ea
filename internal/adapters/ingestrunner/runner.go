// Package ingestrunner runs document ingestion on a fixed interval.
package ingestrunner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heiraid/heiraid-api/internal/service"
)

// Ingester is the ingestion pass executed on every tick.
type Ingester interface {
	Run(ctx context.Context, containers []string) (*service.IngestReport, error)
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Ingester   Ingester
	Containers []string // empty ingests every container
	Interval   time.Duration
	// RunOnStart triggers a pass immediately instead of waiting for the first tick.
	RunOnStart bool
	Logger     *slog.Logger
}

// Runner ticks the ingestion pipeline until its context ends.
type Runner struct {
	ingester   Ingester
	containers []string
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger
}

// NewRunner creates a new ingestion runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Ingester == nil {
		return nil, errors.New("ingester is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		ingester:   opts.Ingester,
		containers: append([]string(nil), opts.Containers...),
		interval:   opts.Interval,
		runOnStart: opts.RunOnStart,
		logger:     opts.Logger.With("component", "ingest_runner"),
	}, nil
}

// Run executes ingestion passes at the configured interval. A failed pass is
// logged and the loop continues. Cancellation returns nil.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting ingest runner", "interval", r.interval, "containers", r.containers)

	if r.runOnStart {
		r.tick(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("ingest runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one pass. Passes never overlap because the loop waits for each.
func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	report, err := r.ingester.Run(ctx, r.containers)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.ErrorContext(ctx, "ingest pass failed", "error", err, "duration", elapsed)
		return
	}
	if report == nil {
		return
	}
	r.logger.InfoContext(ctx, "ingest pass finished",
		"run_id", report.RunID,
		"indexed", report.Indexed,
		"cataloged", report.Cataloged,
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", elapsed,
	)
}
