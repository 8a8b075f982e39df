package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pngsweep/internal/config"
)

func TestNewDiscardsByDefault(t *testing.T) {
	var stderr bytes.Buffer

	l, closer, err := New(config.LoggingCfg{}, false, &stderr)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	Wrap(l).Info("should not appear", "k", "v")

	if stderr.Len() != 0 {
		t.Errorf("expected no output, got %q", stderr.String())
	}
}

func TestNewVerboseWritesLeveledLines(t *testing.T) {
	var stderr bytes.Buffer

	l, closer, err := New(config.LoggingCfg{}, true, &stderr)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	Wrap(l).Warn("Walk error", "path", "/tmp/x")

	out := stderr.String()
	if !strings.Contains(out, "[WARN] Walk error path /tmp/x") {
		t.Errorf("unexpected log line: %q", out)
	}
}

func TestNewWritesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "sweep.log")

	l, closer, err := New(config.LoggingCfg{File: logPath, RotationDays: 30}, false, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	Wrap(l).Error("Remove failed", "path", "a b.png")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[ERROR] Remove failed path a b.png") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestRotateLogsIfNeeded(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sweep.log")
	now := time.Now()

	if err := os.WriteFile(logPath, []byte("old"), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
	old := now.AddDate(0, 0, -10)
	if err := os.Chtimes(logPath, old, old); err != nil {
		t.Fatalf("Failed to age log: %v", err)
	}

	// A rotated copy far beyond the window is pruned
	stale := filepath.Join(dir, "sweep.log.20000101-000000")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatalf("Failed to write stale log: %v", err)
	}
	ancient := now.AddDate(0, 0, -100)
	if err := os.Chtimes(stale, ancient, ancient); err != nil {
		t.Fatalf("Failed to age stale log: %v", err)
	}

	rotateLogsIfNeeded(logPath, 7, now)

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("expected current log to be rotated away")
	}
	rotated := logPath + "." + old.Format("20060102-150405")
	if _, err := os.Stat(rotated); err != nil {
		t.Errorf("expected rotated log %s: %v", rotated, err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale rotated log to be pruned")
	}
}

func TestRotateLogsKeepsFreshFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sweep.log")
	if err := os.WriteFile(logPath, []byte("fresh"), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	rotateLogsIfNeeded(logPath, 7, time.Now())

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("fresh log should stay in place: %v", err)
	}
}
