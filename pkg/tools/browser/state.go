package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotAuthenticated reports that no saved session state exists yet.
var ErrNotAuthenticated = errors.New("not authenticated")

// StateHandle names a Playwright storage-state file. The zero value is unusable.
type StateHandle struct {
	path string
}

// NewStateHandle returns a handle for path, expanding a leading "~/".
func NewStateHandle(path string) StateHandle {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return StateHandle{path: path}
}

// Path returns the file path.
func (h StateHandle) Path() string { return h.path }

// Exists reports whether the state file is present.
func (h StateHandle) Exists() bool {
	if h.path == "" {
		return false
	}
	info, err := os.Stat(h.path)
	return err == nil && !info.IsDir()
}

// Require returns ErrNotAuthenticated unless the state file exists.
func (h StateHandle) Require() error {
	if !h.Exists() {
		return fmt.Errorf("%w: no session state at %s, run login first", ErrNotAuthenticated, h.path)
	}
	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (h StateHandle) Remove() error {
	if h.path == "" {
		return nil
	}
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}
