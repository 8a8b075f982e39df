package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the current version of the application
	Version = "0.1.0-dev"

	// GitCommit is the git commit hash (set during build, else read from build info)
	GitCommit = ""

	// BuildDate is the build date (set during build)
	BuildDate = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("pngsweep version %s (commit: %s, built: %s)",
		Version, Commit(), BuildDate)
}

// Commit returns GitCommit, falling back to the VCS revision stamped by the
// Go toolchain
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}

	if revision == "" {
		return "unknown"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if modified == "true" {
		return revision + "-dirty"
	}
	return revision
}
