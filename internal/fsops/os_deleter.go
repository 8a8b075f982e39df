package fsops

import "os"

// OSDeleter implements Deleter using real os package calls
type OSDeleter struct{}

// Remove unlinks path. Symlinks are removed themselves, never their targets.
func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}
