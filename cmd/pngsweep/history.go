package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pngsweep/internal/database"
	"pngsweep/internal/exitcodes"
)

type historyFlags struct {
	dbPath     string
	recent     int
	action     string
	runs       int
	runID      int64
	pruneDays  int
	stats      bool
	days       int
	jsonOutput bool
}

func newHistoryCmd(a *app) *cobra.Command {
	f := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the removal history database",
		Long: `Query the SQLite removal history written when database_path is set
in the configuration file.`,
		Example: `  pngsweep history --config /etc/pngsweep.yaml --recent 10
  pngsweep history --db /var/lib/pngsweep/removals.db --stats --days 7
  pngsweep history --db removals.db --action ERROR --json
  pngsweep history --db removals.db --run 12
  pngsweep history --db removals.db --prune-days 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.dbPath, "db", "", "Path to removal database (default: database_path from --config)")
	cmd.Flags().IntVar(&f.recent, "recent", 0, "Show N most recent removal attempts")
	cmd.Flags().StringVar(&f.action, "action", "", "Filter by action (REMOVE, ERROR)")
	cmd.Flags().IntVar(&f.runs, "runs", 0, "Show N most recent runs")
	cmd.Flags().Int64Var(&f.runID, "run", 0, "Show every removal attempt of run ID")
	cmd.Flags().IntVar(&f.pruneDays, "prune-days", 0, "Delete history older than N days, then vacuum")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "Show removal statistics")
	cmd.Flags().IntVar(&f.days, "days", 30, "Number of days for statistics")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func (a *app) runHistory(w io.Writer, f *historyFlags) error {
	dbPath := f.dbPath
	if dbPath == "" {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		dbPath = cfg.DatabasePath
	}
	if dbPath == "" {
		return exitWith(exitcodes.InvalidInput, errors.New("no database: pass --db or a --config with database_path"))
	}

	// Opening would create an empty database; a query tool only reads
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		return exitWith(exitcodes.InvalidInput, fmt.Errorf("no removal history at %s", dbPath))
	}

	db, err := database.NewRemovalDB(dbPath)
	if err != nil {
		return exitWith(exitcodes.RuntimeError, fmt.Errorf("failed to open database %s: %w", dbPath, err))
	}
	defer db.Close()

	switch {
	case f.pruneDays > 0:
		err = pruneHistory(w, db, f.pruneDays)
	case f.runID > 0:
		err = showRun(w, db, f.runID, f.jsonOutput)
	case f.stats:
		err = showStats(w, db, f.days, f.jsonOutput)
	case f.runs > 0:
		err = showRuns(w, db, f.runs, f.jsonOutput)
	case f.action != "":
		limit := f.recent
		if limit <= 0 {
			limit = 100
		}
		err = showByAction(w, db, f.action, limit, f.jsonOutput)
	case f.recent > 0:
		err = showRecent(w, db, f.recent, f.jsonOutput)
	default:
		return exitWith(exitcodes.InvalidInput, errors.New("choose one of --recent, --action, --run, --runs, --stats or --prune-days"))
	}
	if err != nil {
		return exitWith(exitcodes.RuntimeError, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func showStats(w io.Writer, db *database.RemovalDB, days int, jsonOutput bool) error {
	stats, err := db.GetStats(days)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, stats)
	}

	fmt.Fprintf(w, "Removal Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Total Runs:       %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Total Removed:    %d\n", stats.TotalRemoved)
	fmt.Fprintf(w, "Total Errors:     %d\n", stats.TotalErrors)
	fmt.Fprintf(w, "Space Freed:      %s\n", formatBytes(stats.TotalBytesRemoved))

	if len(stats.ByAction) > 0 {
		actions := make([]string, 0, len(stats.ByAction))
		for action := range stats.ByAction {
			actions = append(actions, action)
		}
		sort.Strings(actions)

		fmt.Fprintln(w, "\nBy Action:")
		for _, action := range actions {
			fmt.Fprintf(w, "  %-15s %d\n", action, stats.ByAction[action])
		}
	}
	return nil
}

func showRecent(w io.Writer, db *database.RemovalDB, limit int, jsonOutput bool) error {
	records, err := db.GetRecentRemovals(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent removals: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, records)
	}

	printRecords(w, records)
	return nil
}

func showByAction(w io.Writer, db *database.RemovalDB, action string, limit int, jsonOutput bool) error {
	records, err := db.GetRemovalsByAction(action, limit)
	if err != nil {
		return fmt.Errorf("failed to query by action: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, records)
	}

	fmt.Fprintf(w, "Records with action: %s\n\n", action)
	printRecords(w, records)
	return nil
}

func showRun(w io.Writer, db *database.RemovalDB, runID int64, jsonOutput bool) error {
	records, err := db.GetRemovalsByRun(runID)
	if err != nil {
		return fmt.Errorf("failed to query run %d: %w", runID, err)
	}

	if jsonOutput {
		return writeJSON(w, records)
	}

	fmt.Fprintf(w, "Removal attempts of run %d\n\n", runID)
	printRecords(w, records)
	return nil
}

func pruneHistory(w io.Writer, db *database.RemovalDB, days int) error {
	removed, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	fmt.Fprintf(w, "Pruned %d removal record(s) older than %d days\n", removed, days)
	return nil
}

func showRuns(w io.Writer, db *database.RemovalDB, limit int, jsonOutput bool) error {
	runs, err := db.GetRecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to get runs: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tStarted\tScanned\tRemoved\tFailed\tFreed\tRoot")
	_, _ = fmt.Fprintln(tw, "--\t-------\t-------\t-------\t------\t-----\t----")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Scanned, r.Removed, r.Failed, formatBytes(r.BytesRemoved), r.Root)
	}
	return tw.Flush()
}

func printRecords(w io.Writer, records []database.RemovalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tRun\tTimestamp\tAction\tSize\tPath")
	_, _ = fmt.Fprintln(tw, "--\t---\t---------\t------\t----\t----")

	for _, r := range records {
		path := r.Path
		if r.ErrorMessage != "" {
			path = path + " (" + r.ErrorMessage + ")"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.RunID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, formatBytes(r.Size), path)
	}
	_ = tw.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
