package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyInput     = errors.New("no directory provided")
	ErrRootNotFound   = errors.New("directory does not exist")
	ErrNotDirectory   = errors.New("not a directory")
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside sweep root")
	ErrSymlinkEscape  = errors.New("symlink escape detected")
)

// ValidateRoot trims raw user input and checks it names an existing directory.
// The returned path is cleaned but otherwise spelled as the user gave it.
func ValidateRoot(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	root := filepath.Clean(trimmed)

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return root, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return root, fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	if !info.IsDir() {
		return root, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return root, nil
}

// Validator gates every removal of a sweep
type Validator struct {
	AllowedRoots   []string
	ProtectedPaths []string
}

// NewValidator creates a validator for the sweep roots plus optional protected paths
func NewValidator(allowed []string, extraProtected []string) *Validator {
	return &Validator{
		AllowedRoots:   normalizeRoots(allowed),
		ProtectedPaths: defaultProtected(extraProtected),
	}
}

// ValidateDeleteTarget is the single source of truth for removal authorization
// Returns typed error on safety violation
func (v *Validator) ValidateDeleteTarget(path string) error {
	// 1. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 2. Block protected paths
	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	// 3. Ensure within a sweep root
	if !IsWithinAllowedRoots(p, v.AllowedRoots) {
		return ErrOutsideAllowed
	}

	// 4. Detect a parent directory swapped for a symlink that leaves the root
	escaped, err := DetectSymlinkEscape(p, v.AllowedRoots)
	if err != nil {
		// A vanished parent means the remove will fail and be reported anyway
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if escaped {
		return ErrSymlinkEscape
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsWithinAllowedRoots checks if path is strictly below any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if p != r && hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// DetectSymlinkEscape resolves the parent directory of cleanAbs and reports
// whether it lands outside the allowed roots. The final element is left alone:
// removing a symlink unlinks the link, never its target.
func DetectSymlinkEscape(cleanAbs string, allowedRoots []string) (bool, error) {
	parent, err := filepath.EvalSymlinks(filepath.Dir(cleanAbs))
	if err != nil {
		return false, err
	}
	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return false, err
	}
	resolved := filepath.Join(parentAbs, filepath.Base(cleanAbs))
	return !IsWithinAllowedRoots(resolved, allowedRoots), nil
}

// IsProtectedPath checks if path matches or sits below a protected path
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	// Hard block: "/" exact
	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if prot == string(os.PathSeparator) {
			continue
		}
		if hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path equals prefix or sits below it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	if prefix == string(os.PathSeparator) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts roots to absolute, cleaned paths. When a root
// resolves through symlinks to a different location, the resolved form is
// kept as well so both spellings are accepted.
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		add(abs)
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			add(filepath.Clean(resolved))
		}
	}
	return out
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{"/"}
	return append(base, extra...)
}
