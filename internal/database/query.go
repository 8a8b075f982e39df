package database

import (
	"database/sql"
	"time"
)

const removalColumns = `
	SELECT id, run_id, timestamp, action, path, file_name, size,
	       match_reason, error_message
	FROM removals
`

// GetRecentRemovals returns the N most recent removal attempts
func (d *RemovalDB) GetRecentRemovals(limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(removalColumns+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetRemovalsByAction returns the N most recent attempts with the given action
func (d *RemovalDB) GetRemovalsByAction(action string, limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(removalColumns+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, action, limit)
}

// GetRemovalsByRun returns every attempt of a run in insertion order
func (d *RemovalDB) GetRemovalsByRun(runID int64) ([]RemovalRecord, error) {
	return d.queryRemovals(removalColumns+`
	WHERE run_id = ?
	ORDER BY id ASC
	`, runID)
}

// GetRecentRuns returns the N most recent runs
func (d *RemovalDB) GetRecentRuns(limit int) ([]RunRecord, error) {
	rows, err := d.db.Query(`
	SELECT id, root, started_at, finished_at, scanned, matched, removed, failed, bytes_removed
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var finished sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.Root, &r.StartedAt, &finished,
			&r.Scanned, &r.Matched, &r.Removed, &r.Failed, &r.BytesRemoved,
		); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// RemovalStats holds aggregated statistics
type RemovalStats struct {
	TotalRuns         int            `json:"total_runs"`
	TotalRemoved      int            `json:"total_removed"`
	TotalErrors       int            `json:"total_errors"`
	TotalBytesRemoved int64          `json:"total_bytes_removed"`
	ByAction          map[string]int `json:"by_action"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
}

// GetStats returns statistics for the last N days
func (d *RemovalDB) GetStats(days int) (*RemovalStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &RemovalStats{
		StartDate: since,
		EndDate:   now,
		ByAction:  make(map[string]int),
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'REMOVE' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END),
			COALESCE(SUM(CASE WHEN action = 'REMOVE' THEN size END), 0)
		FROM removals
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRemoved, &stats.TotalErrors, &stats.TotalBytesRemoved)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE started_at >= ?`, since).Scan(&stats.TotalRuns)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT action, COUNT(*)
		FROM removals
		WHERE timestamp >= ?
		GROUP BY action
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
	}

	return stats, rows.Err()
}

// DeleteOldRecords removes history older than specified days
func (d *RemovalDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	// Runs left without any removals and older than the cutoff go too
	if _, err := d.db.Exec(`
		DELETE FROM runs
		WHERE started_at < ? AND id NOT IN (SELECT DISTINCT run_id FROM removals)
	`, cutoff); err != nil {
		return removed, err
	}

	return removed, nil
}

// queryRemovals executes a removal query and scans results
func (d *RemovalDB) queryRemovals(query string, args ...interface{}) ([]RemovalRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RemovalRecord
	for rows.Next() {
		var r RemovalRecord
		var reason, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.Path, &r.FileName,
			&r.Size, &reason, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.MatchReason = reason.String
		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
