package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"pngsweep/internal/logging"
)

// Scanner walks a root directory and hands matching entries to a visitor
type Scanner struct {
	logger   logging.Logger
	throttle func()
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Wrap(nil)
	}
	return &Scanner{logger: logger}
}

// SetThrottle installs a hook called once per examined entry
func (s *Scanner) SetThrottle(fn func()) {
	s.throttle = fn
}

// Candidate is a matching entry found during a walk. It is passed to the
// visitor as soon as it is found and is not retained by the scanner.
type Candidate struct {
	Path   string // Dir joined with Name, rooted the way the caller spelled the root
	Dir    string
	Name   string
	Size   int64 // 0 when the entry could not be stat'ed
	Reason MatchReason
}

// Stats summarizes a walk
type Stats struct {
	Scanned    int // non-directory entries examined
	Matched    int // entries handed to the visitor
	WalkErrors int // unreadable directories or entries, skipped
}

// VisitFunc receives each candidate. Returning an error stops the walk.
type VisitFunc func(Candidate) error

var errNilVisitor = errors.New("nil visitor")

// Walk visits every entry beneath root, depth-first in lexical order.
// Directory names are never matched, including symlinks to directories;
// every other entry (regular files, file symlinks, special files) is tested
// with Match. A symlinked root is walked, but symlinked directories beneath
// it are not followed, so link cycles cannot occur. Unreadable directories are
// logged and skipped.
func (s *Scanner) Walk(root string, visit VisitFunc) (Stats, error) {
	var stats Stats
	if visit == nil {
		return stats, errNilVisitor
	}

	// WalkDir does not descend into a symlinked root. A trailing separator
	// makes its Lstat resolve the link while children keep the user's spelling.
	walkRoot := root
	if info, err := os.Lstat(root); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(os.PathSeparator)
	}

	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Log and continue: a single unreadable directory never aborts the sweep
			s.logger.Warn("Walk error, skipping", "path", path, "error", err)
			stats.WalkErrors++
			return nil
		}

		if d.IsDir() {
			return nil
		}
		// A link to a directory is a directory entry, never a file
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}

		stats.Scanned++
		if s.throttle != nil {
			s.throttle()
		}

		reason, ok := Match(d.Name())
		if !ok {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}

		stats.Matched++
		return visit(Candidate{
			Path:   path,
			Dir:    filepath.Dir(path),
			Name:   d.Name(),
			Size:   size,
			Reason: reason,
		})
	})

	return stats, err
}
