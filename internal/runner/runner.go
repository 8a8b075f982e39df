package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pngsweep/internal/cleanup"
	"pngsweep/internal/config"
	"pngsweep/internal/database"
	"pngsweep/internal/fsops"
	"pngsweep/internal/limiter"
	"pngsweep/internal/logging"
	"pngsweep/internal/metrics"
	"pngsweep/internal/safety"
	"pngsweep/internal/scan"
)

var errNilConfig = errors.New("nil config")

// Options configures one sweep
type Options struct {
	Root     string // validated root, see safety.ValidateRoot
	Config   *config.Config
	Logger   *log.Logger
	Deleter  fsops.Deleter       // nil uses the OS
	DB       *database.RemovalDB // nil disables history
	Reporter cleanup.Reporter    // receives per-file failures
}

// Result is the outcome of a finished sweep
type Result struct {
	Root         string
	Scanned      int
	Matched      int
	Removed      int
	Failed       int
	WalkErrors   int
	BytesRemoved int64
	Duration     time.Duration
	Failures     []cleanup.Outcome // matching entries that could not be removed, in walk order
}

// Sweep removes every matching file under root with the default settings
func Sweep(root string) (Result, error) {
	return Run(context.Background(), Options{Root: root, Config: config.Default()})
}

// Run walks opts.Root once and removes every matching entry. Per-file failures
// are reported and counted, never returned. The context is checked before the
// walk starts only.
func Run(ctx context.Context, opts Options) (Result, error) {
	res := Result{Root: opts.Root}
	cfg := opts.Config
	if cfg == nil {
		return res, errNilConfig
	}
	logger := logging.Wrap(opts.Logger)

	select {
	case <-ctx.Done():
		return res, ctx.Err()
	default:
	}

	metrics.Init()
	start := time.Now()

	var runID int64
	if opts.DB != nil {
		id, err := opts.DB.BeginRun(opts.Root, start)
		if err != nil {
			// History is optional; the sweep itself still runs
			logger.Error("Failed to record run start", "root", opts.Root, "error", err)
		} else {
			runID = id
		}
	}

	var db *database.RemovalDB
	if runID != 0 {
		db = opts.DB
	}

	cleaner := cleanup.NewCleaner(logger, opts.Reporter, db, runID)
	if opts.Deleter != nil {
		cleaner.SetDeleter(opts.Deleter)
	}
	cleaner.SetValidator(safety.NewValidator([]string{opts.Root}, cfg.ProtectedPaths))

	scanner := scan.NewScanner(logger)
	if cfg.ThrottleEnabled() {
		cpuLimiter := limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
		scanner.SetThrottle(cpuLimiter.Throttle)
	}

	removalLimiter := limiter.NewRemovalLimiter(cfg.ResourceLimits.MaxRemovalsPerSecond)
	// Pacing must not cancel a sweep that has started
	waitCtx := context.WithoutCancel(ctx)

	logger.Info("Sweep started", "root", opts.Root)

	stats, err := scanner.Walk(opts.Root, func(c scan.Candidate) error {
		if err := removalLimiter.Wait(waitCtx); err != nil {
			return err
		}
		if out := cleaner.Remove(c); !out.Removed {
			res.Failures = append(res.Failures, out)
		}
		return nil
	})

	res.Scanned = stats.Scanned
	res.Matched = stats.Matched
	res.WalkErrors = stats.WalkErrors
	res.Removed = cleaner.Removed()
	res.Failed = cleaner.Failed()
	res.BytesRemoved = cleaner.BytesRemoved()
	res.Duration = time.Since(start)

	if err != nil {
		return res, fmt.Errorf("walk %s: %w", opts.Root, err)
	}

	if db != nil {
		if err := db.FinishRun(runID, database.RunSummary{
			FinishedAt:   time.Now(),
			Scanned:      res.Scanned,
			Matched:      res.Matched,
			Removed:      res.Removed,
			Failed:       res.Failed,
			BytesRemoved: res.BytesRemoved,
		}); err != nil {
			logger.Error("Failed to record run totals", "run_id", runID, "error", err)
		}
	}

	metrics.RecordRun(res.Scanned, res.Removed, res.Duration)
	if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logger.Error("Failed to write metrics textfile", "error", err)
	}

	logger.Info("Sweep complete",
		"root", opts.Root,
		"scanned", res.Scanned,
		"matched", res.Matched,
		"removed", res.Removed,
		"failed", res.Failed,
		"bytes", res.BytesRemoved,
		"duration", fmt.Sprintf("%.3fs", res.Duration.Seconds()),
	)
	return res, nil
}
