package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsInit verifies that Init() is idempotent and registers metrics
func TestMetricsInit(t *testing.T) {
	// Call Init multiple times - should be idempotent via sync.Once
	Init()
	Init()
	Init()

	if SweepDuration == nil {
		t.Error("SweepDuration should be initialized")
	}
	if FilesScannedTotal == nil {
		t.Error("FilesScannedTotal should be initialized")
	}
	if FilesRemovedTotal == nil {
		t.Error("FilesRemovedTotal should be initialized")
	}
	if BytesRemovedTotal == nil {
		t.Error("BytesRemovedTotal should be initialized")
	}
	if RemoveErrorsTotal == nil {
		t.Error("RemoveErrorsTotal should be initialized")
	}
	if LastRunTimestamp == nil {
		t.Error("LastRunTimestamp should be initialized")
	}

	mfs, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"pngsweep_sweep_duration_seconds",
		"pngsweep_files_scanned_total",
		"pngsweep_files_removed_total",
		"pngsweep_bytes_removed_total",
		"pngsweep_remove_errors_total",
		"pngsweep_last_run_timestamp_seconds",
		"pngsweep_last_run_removed_files",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range mfs {
		foundMetrics[mf.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !foundMetrics[expected] {
			t.Errorf("Expected metric %s not found in registry", expected)
		}
	}

	// Only sweep metrics live in the registry
	for name := range foundMetrics {
		if !strings.HasPrefix(name, "pngsweep_") {
			t.Errorf("Unexpected metric %s in registry", name)
		}
	}
}

// TestHelperFunctions verifies that helper functions create valid metrics
func TestHelperFunctions(t *testing.T) {
	t.Run("NewDurationHistogram", func(t *testing.T) {
		if h := NewDurationHistogram("test_duration", "Test duration metric"); h == nil {
			t.Error("NewDurationHistogram returned nil")
		}
	})

	t.Run("NewCounter", func(t *testing.T) {
		if c := NewCounter("test_counter", "Test counter metric"); c == nil {
			t.Error("NewCounter returned nil")
		}
	})

	t.Run("NewGauge", func(t *testing.T) {
		if g := NewGauge("test_gauge", "Test gauge metric"); g == nil {
			t.Error("NewGauge returned nil")
		}
	})
}

// TestDurationBucketsAscending verifies bucket boundaries are strictly increasing
func TestDurationBucketsAscending(t *testing.T) {
	for i := 1; i < len(DurationBuckets); i++ {
		if DurationBuckets[i] <= DurationBuckets[i-1] {
			t.Errorf("bucket[%d]=%v not greater than bucket[%d]=%v",
				i, DurationBuckets[i], i-1, DurationBuckets[i-1])
		}
	}
}

// TestRecordRun verifies run totals land in the counters and gauges
func TestRecordRun(t *testing.T) {
	Init()

	before := testutil.ToFloat64(FilesScannedTotal)
	RecordRun(12, 3, 250*time.Millisecond)

	if got := testutil.ToFloat64(FilesScannedTotal) - before; got != 12 {
		t.Errorf("FilesScannedTotal delta = %v, want 12", got)
	}
	if got := testutil.ToFloat64(LastRunRemoved); got != 3 {
		t.Errorf("LastRunRemoved = %v, want 3", got)
	}
	if got := testutil.ToFloat64(LastRunTimestamp); got <= 0 {
		t.Errorf("LastRunTimestamp = %v, want > 0", got)
	}
}

// TestWriteTextfile verifies the textfile collector output
func TestWriteTextfile(t *testing.T) {
	Init()
	FilesRemovedTotal.Inc()

	path := filepath.Join(t.TempDir(), "textfile", "pngsweep.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), "pngsweep_files_removed_total") {
		t.Errorf("textfile missing removal counter:\n%s", data)
	}
}

// TestWriteTextfileDisabled verifies an empty path is a no-op
func TestWriteTextfileDisabled(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") = %v, want nil", err)
	}
}
