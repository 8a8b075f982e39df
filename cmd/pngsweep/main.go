package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pngsweep/internal/config"
	"pngsweep/internal/database"
	"pngsweep/internal/exitcodes"
	"pngsweep/internal/logging"
	"pngsweep/internal/runner"
	"pngsweep/internal/safety"
	"pngsweep/internal/ui"
	"pngsweep/pkg/version"
)

// exitError carries the process exit status out of a command. A nil err
// means the message was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pngsweep [directory]",
		Short: "Remove PNG files with whitespace in their names",
		Long: `pngsweep walks a directory tree and removes every PNG file whose name
contains whitespace. Directories are traversed but never removed.

Run without arguments to be prompted for the directory.`,
		Example:       `pngsweep ~/Pictures/exports`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Usage only helps for flag errors, which cobra reports itself
		SilenceErrors: true, // We format errors ourselves for consistent output
		RunE:          a.runSweep,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Write the operational log to stderr")

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	})
	rootCmd.AddCommand(newHistoryCmd(a))

	return rootCmd
}

// loadConfig returns the defaults when no --config was given
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, exitWith(exitcodes.InvalidConfig, fmt.Errorf("failed to load config: %w", err))
	}
	return cfg, nil
}

func (a *app) runSweep(cmd *cobra.Command, args []string) error {
	u := ui.NewWithIO(a.stdin, a.stdout, a.stderr)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, a.verbose, a.stderr)
	if err != nil {
		return exitWith(exitcodes.RuntimeError, fmt.Errorf("failed to initialize logging: %w", err))
	}
	defer closer.Close()
	log := logging.Wrap(logger)

	if a.configPath != "" {
		log.Info("Config file", "path", a.configPath)
	}

	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		raw, err = u.PromptDirectory()
		if errors.Is(err, ui.ErrInterrupted) {
			return exitWith(exitcodes.Interrupted, nil)
		}
		if err != nil {
			return exitWith(exitcodes.InvalidInput, err)
		}
	}

	root, err := safety.ValidateRoot(raw)
	switch {
	case errors.Is(err, safety.ErrEmptyInput):
		u.Fatal("No directory provided.")
		return exitWith(exitcodes.InvalidInput, nil)
	case errors.Is(err, safety.ErrRootNotFound):
		log.Warn("Root does not exist", "root", root, "error", err)
		u.Fatal("Not a directory: " + root)
		return exitWith(exitcodes.InvalidInput, nil)
	case err != nil:
		log.Warn("Root is not a usable directory", "root", root, "error", err)
		u.Fatal("Not a directory: " + root)
		return exitWith(exitcodes.InvalidInput, nil)
	}

	// Initialize database for removal history
	var db *database.RemovalDB
	if cfg.DatabasePath != "" {
		db, err = database.NewRemovalDB(cfg.DatabasePath)
		if err != nil {
			return exitWith(exitcodes.RuntimeError, fmt.Errorf("failed to open database: %w", err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database", "error", err)
			}
		}()
	}

	res, err := runner.Run(context.Background(), runner.Options{
		Root:     root,
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Reporter: u,
	})
	if err != nil {
		return exitWith(exitcodes.RuntimeError, err)
	}

	u.Summary(res.Removed, res.Root)
	return nil
}

// run executes the CLI and returns the process exit status
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitcodes.Success
	}

	code := exitcodes.InvalidInput // cobra argument and flag errors
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		if ee.err == nil {
			return code
		}
	}

	color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
	return code
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
