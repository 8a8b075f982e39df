package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep metrics
var (
	// SweepDuration tracks how long a full sweep takes
	SweepDuration prometheus.Histogram

	// FilesScannedTotal tracks non-directory entries examined
	FilesScannedTotal prometheus.Counter

	// FilesRemovedTotal tracks files successfully removed
	FilesRemovedTotal prometheus.Counter

	// BytesRemovedTotal tracks bytes released by removed files
	BytesRemovedTotal prometheus.Counter

	// RemoveErrorsTotal tracks matching files that could not be removed
	RemoveErrorsTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last finished sweep
	LastRunTimestamp prometheus.Gauge

	// LastRunRemoved records the removal count of the last finished sweep
	LastRunRemoved prometheus.Gauge
)

func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"pngsweep_sweep_duration_seconds",
		"Duration of sweeps in seconds.",
	)

	FilesScannedTotal = NewCounter(
		"pngsweep_files_scanned_total",
		"Total number of non-directory entries examined.",
	)

	FilesRemovedTotal = NewCounter(
		"pngsweep_files_removed_total",
		"Total number of PNG files removed.",
	)

	BytesRemovedTotal = NewCounter(
		"pngsweep_bytes_removed_total",
		"Total bytes released by removed files.",
	)

	RemoveErrorsTotal = NewCounter(
		"pngsweep_remove_errors_total",
		"Total number of matching files that could not be removed.",
	)

	LastRunTimestamp = NewGauge(
		"pngsweep_last_run_timestamp_seconds",
		"Timestamp of the last finished sweep (Unix epoch seconds).",
	)

	LastRunRemoved = NewGauge(
		"pngsweep_last_run_removed_files",
		"Files removed by the last finished sweep.",
	)
}

func registerSweepMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SweepDuration)
	reg.MustRegister(FilesScannedTotal)
	reg.MustRegister(FilesRemovedTotal)
	reg.MustRegister(BytesRemovedTotal)
	reg.MustRegister(RemoveErrorsTotal)
	reg.MustRegister(LastRunTimestamp)
	reg.MustRegister(LastRunRemoved)
}

// RecordRun stores the totals of a finished sweep
func RecordRun(scanned, removed int, elapsed time.Duration) {
	FilesScannedTotal.Add(float64(scanned))
	SweepDuration.Observe(elapsed.Seconds())
	LastRunRemoved.Set(float64(removed))
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}
