package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pngsweep/internal/config"
	"pngsweep/internal/metrics"
	"pngsweep/internal/runner"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	// Initialize metrics once for all integration tests
	metrics.Init()
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func present(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// TestSweepSafetyIntegration verifies the removal contract on a real filesystem
func TestSweepSafetyIntegration(t *testing.T) {
	// 1. Create temporary filesystem structure
	tmpRoot := t.TempDir()
	root := filepath.Join(tmpRoot, "exports")
	outside := filepath.Join(tmpRoot, "outside")

	removable := []string{
		filepath.Join(root, "a b.png"),
		filepath.Join(root, "tab\tname.PNG"),
		filepath.Join(root, "nbsp\u00a0name.png"),
		filepath.Join(root, "dir with space", "deep", "x y.Png"),
	}
	kept := []string{
		filepath.Join(root, "ab.png"),
		filepath.Join(root, "a b.jpg"),
		filepath.Join(root, "a b.png.bak"),
		filepath.Join(root, "keep", "protected file.png"),
	}
	for _, p := range append(append([]string{}, removable...), kept...) {
		writeFile(t, p, "png")
	}

	// Directory whose own name matches: traversed, never removed
	matchingDir := filepath.Join(root, "folder name.png")
	writeFile(t, filepath.Join(matchingDir, "inner.txt"), "x")

	// Files outside the root reached through symlinks
	outsideFile := filepath.Join(outside, "target file.png")
	outsideInDir := filepath.Join(outside, "gallery", "in gallery.png")
	writeFile(t, outsideFile, "MUST KEEP")
	writeFile(t, outsideInDir, "MUST KEEP")

	linkToFile := filepath.Join(root, "link to target.png")
	linkToDir := filepath.Join(root, "gallery link")
	if err := os.Symlink(outsideFile, linkToFile); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "gallery"), linkToDir); err != nil {
		t.Fatalf("Failed to create dir symlink: %v", err)
	}

	// 2. Protect one subdirectory through config
	cfg := config.Default()
	cfg.ProtectedPaths = []string{filepath.Join(root, "keep")}

	var failed []string
	reporter := reporterFunc(func(path string, err error) { failed = append(failed, path) })

	// 3. Sweep
	res, err := runner.Run(context.Background(), runner.Options{Root: root, Config: cfg, Reporter: reporter})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 4. Assert outcomes
	if res.Removed != len(removable)+1 { // plus the matching symlink itself
		t.Errorf("Removed = %d, want %d", res.Removed, len(removable)+1)
	}
	if res.Failed != 1 || len(failed) != 1 || failed[0] != kept[3] {
		t.Errorf("Failed = %d reported = %v, want only the protected file", res.Failed, failed)
	}

	for _, p := range removable {
		if present(p) {
			t.Errorf("%q should have been removed", p)
		}
	}
	for _, p := range kept {
		if !present(p) {
			t.Errorf("%q should have been kept", p)
		}
	}

	t.Run("MatchingDirectoryKept", func(t *testing.T) {
		if !present(matchingDir) || !present(filepath.Join(matchingDir, "inner.txt")) {
			t.Error("directory with a matching name must be left alone")
		}
	})

	t.Run("SymlinkUnlinkedTargetKept", func(t *testing.T) {
		if present(linkToFile) {
			t.Error("matching symlink should be unlinked")
		}
		data, err := os.ReadFile(outsideFile)
		if err != nil || string(data) != "MUST KEEP" {
			t.Errorf("SAFETY VIOLATION: symlink target changed: %q, %v", data, err)
		}
	})

	t.Run("SymlinkedDirectoryNotFollowed", func(t *testing.T) {
		if !present(outsideInDir) {
			t.Error("SAFETY VIOLATION: file behind a directory symlink was removed")
		}
		if !present(linkToDir) {
			t.Error("non-matching directory symlink should stay")
		}
	})

	t.Run("SecondRunRemovesNothing", func(t *testing.T) {
		res, err := runner.Run(context.Background(), runner.Options{Root: root, Config: cfg, Reporter: reporter})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if res.Removed != 0 {
			t.Errorf("Removed = %d, want 0", res.Removed)
		}
	})
}

// TestSweepMetrics verifies counters follow a sweep
func TestSweepMetrics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a b.png"), "12345")
	writeFile(t, filepath.Join(root, "c d.png"), "123")
	writeFile(t, filepath.Join(root, "plain.png"), "1")

	removedBefore := testutil.ToFloat64(metrics.FilesRemovedTotal)
	bytesBefore := testutil.ToFloat64(metrics.BytesRemovedTotal)
	scannedBefore := testutil.ToFloat64(metrics.FilesScannedTotal)

	if _, err := runner.Sweep(root); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.FilesRemovedTotal) - removedBefore; got != 2 {
		t.Errorf("FilesRemovedTotal delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.BytesRemovedTotal) - bytesBefore; got != 8 {
		t.Errorf("BytesRemovedTotal delta = %v, want 8", got)
	}
	if got := testutil.ToFloat64(metrics.FilesScannedTotal) - scannedBefore; got != 3 {
		t.Errorf("FilesScannedTotal delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.LastRunRemoved); got != 2 {
		t.Errorf("LastRunRemoved = %v, want 2", got)
	}
}

type reporterFunc func(path string, err error)

func (f reporterFunc) RemoveFailed(path string, err error) { f(path, err) }
