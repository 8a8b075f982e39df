package cleanup

import (
	"pngsweep/internal/database"
	"pngsweep/internal/fsops"
	"pngsweep/internal/logging"
	"pngsweep/internal/metrics"
	"pngsweep/internal/safety"
	"pngsweep/internal/scan"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics interface for removal metrics
type Metrics interface {
	FilesRemovedTotal() prometheus.Counter
	BytesRemovedTotal() prometheus.Counter
	RemoveErrorsTotal() prometheus.Counter
}

// sweepMetrics wraps global metrics to implement Metrics interface
type sweepMetrics struct{}

func (m *sweepMetrics) FilesRemovedTotal() prometheus.Counter {
	return metrics.FilesRemovedTotal
}

func (m *sweepMetrics) BytesRemovedTotal() prometheus.Counter {
	return metrics.BytesRemovedTotal
}

func (m *sweepMetrics) RemoveErrorsTotal() prometheus.Counter {
	return metrics.RemoveErrorsTotal
}

// Reporter receives each per-file failure for the user-facing error stream
type Reporter interface {
	RemoveFailed(path string, err error)
}

// Outcome is the classified result of one removal attempt
type Outcome struct {
	Candidate scan.Candidate
	Removed   bool
	Err       error // set when Removed is false
}

// Cleaner removes candidates one at a time and keeps the running totals
type Cleaner struct {
	logger    logging.Logger
	metrics   Metrics
	reporter  Reporter
	deleter   fsops.Deleter
	validator *safety.Validator
	db        *database.RemovalDB // Database for recording removal history
	runID     int64

	removed      int
	failed       int
	bytesRemoved int64
}

// NewCleaner creates a new Cleaner. metrics.Init must have been called.
// db may be nil, in which case no history is recorded.
func NewCleaner(logger logging.Logger, reporter Reporter, db *database.RemovalDB, runID int64) *Cleaner {
	if logger == nil {
		logger = logging.Wrap(nil)
	}
	return &Cleaner{
		logger:   logger,
		metrics:  &sweepMetrics{},
		reporter: reporter,
		deleter:  fsops.OSDeleter{},
		db:       db,
		runID:    runID,
	}
}

// SetDeleter replaces the filesystem deleter (tests use fsops.FakeDeleter)
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetValidator installs the safety gate consulted before every removal
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// Remove attempts to delete one candidate. A failure is reported, logged and
// recorded; it is never returned as an error so the sweep always continues.
func (c *Cleaner) Remove(cand scan.Candidate) Outcome {
	if c.validator != nil {
		if err := c.validator.ValidateDeleteTarget(cand.Path); err != nil {
			return c.fail(cand, err)
		}
	}

	if err := c.deleter.Remove(cand.Path); err != nil {
		return c.fail(cand, err)
	}

	c.removed++
	c.bytesRemoved += cand.Size
	c.metrics.FilesRemovedTotal().Inc()
	c.metrics.BytesRemovedTotal().Add(float64(cand.Size))

	c.logger.Info("Removed",
		"path", cand.Path,
		"size", cand.Size,
		"reason", cand.Reason.ToLogString(),
	)
	c.record(database.ActionRemove, cand, "")

	return Outcome{Candidate: cand, Removed: true}
}

func (c *Cleaner) fail(cand scan.Candidate, err error) Outcome {
	c.failed++
	c.metrics.RemoveErrorsTotal().Inc()

	if c.reporter != nil {
		c.reporter.RemoveFailed(cand.Path, err)
	}
	c.logger.Error("Failed to remove", "path", cand.Path, "error", err)
	c.record(database.ActionError, cand, err.Error())

	return Outcome{Candidate: cand, Err: err}
}

func (c *Cleaner) record(action string, cand scan.Candidate, errMsg string) {
	if c.db == nil {
		return
	}
	if dbErr := c.db.RecordRemoval(c.runID, action, cand, errMsg); dbErr != nil {
		// History is best effort and never changes the count
		c.logger.Error("Failed to record removal to database", "path", cand.Path, "error", dbErr)
	}
}

// Removed returns the number of files successfully removed so far
func (c *Cleaner) Removed() int { return c.removed }

// Failed returns the number of matching files that could not be removed
func (c *Cleaner) Failed() int { return c.failed }

// BytesRemoved returns the total size of removed files
func (c *Cleaner) BytesRemoved() int64 { return c.bytesRemoved }
