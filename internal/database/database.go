package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"pngsweep/internal/scan"
)

// Actions recorded per matching file
const (
	ActionRemove = "REMOVE"
	ActionError  = "ERROR"
)

// RemovalDB manages the SQLite database for removal history
type RemovalDB struct {
	db *sql.DB
}

// RemovalRecord represents a single removal attempt
type RemovalRecord struct {
	ID           int64     `json:"id"`
	RunID        int64     `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	Size         int64     `json:"size"`
	MatchReason  string    `json:"match_reason"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunRecord represents one sweep of a root
type RunRecord struct {
	ID           int64      `json:"id"`
	Root         string     `json:"root"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Scanned      int        `json:"scanned"`
	Matched      int        `json:"matched"`
	Removed      int        `json:"removed"`
	Failed       int        `json:"failed"`
	BytesRemoved int64      `json:"bytes_removed"`
}

// RunSummary carries the totals written when a run finishes
type RunSummary struct {
	FinishedAt   time.Time
	Scanned      int
	Matched      int
	Removed      int
	Failed       int
	BytesRemoved int64
}

// NewRemovalDB creates a new database connection and initializes schema
func NewRemovalDB(dbPath string) (*RemovalDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Executing a query instead of Ping() forces the file to be created
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	rdb := &RemovalDB{db: db}
	if err = rdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return rdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *RemovalDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		scanned INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		removed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		bytes_removed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT NOT NULL,
		size INTEGER NOT NULL,
		match_reason TEXT,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_removals_run ON removals(run_id);
	CREATE INDEX IF NOT EXISTS idx_removals_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_removals_action ON removals(action);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// BeginRun inserts a run row and returns its id
func (d *RemovalDB) BeginRun(root string, startedAt time.Time) (int64, error) {
	res, err := d.db.Exec(`INSERT INTO runs (root, started_at) VALUES (?, ?)`, root, startedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun stores the totals of a run
func (d *RemovalDB) FinishRun(runID int64, s RunSummary) error {
	res, err := d.db.Exec(`
	UPDATE runs
	SET finished_at = ?, scanned = ?, matched = ?, removed = ?, failed = ?, bytes_removed = ?
	WHERE id = ?
	`, s.FinishedAt, s.Scanned, s.Matched, s.Removed, s.Failed, s.BytesRemoved, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// RecordRemoval inserts one removal attempt. errorMsg is empty for successes.
func (d *RemovalDB) RecordRemoval(runID int64, action string, c scan.Candidate, errorMsg string) error {
	var errMsg sql.NullString
	if errorMsg != "" {
		errMsg = sql.NullString{String: errorMsg, Valid: true}
	}

	_, err := d.db.Exec(`
	INSERT INTO removals (
		run_id, timestamp, action, path, file_name, size, match_reason, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		time.Now(),
		action,
		c.Path,
		c.Name,
		c.Size,
		c.Reason.ToLogString(),
		errMsg,
	)
	return err
}

// Close closes the database connection
func (d *RemovalDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *RemovalDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
