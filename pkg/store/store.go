// Package store persists mock endpoints and server configuration per scope.
//
// Each scope owns two whole documents, an ordered endpoint collection and a
// single config record, read and written through a Provider:
//   - MemoryProvider keeps documents in process (tests, throwaway sessions)
//   - store/file writes one file per document with atomic rename
//   - store/sqlite keeps one row per document in an embedded database
//
// Documents are encoded as JSON (default) or YAML. Missing or unparsable
// documents degrade to an empty collection or the default config.
//
// Default directories follow the XDG Base Directory Specification:
//   - Data: ~/.local/share/mockhost/
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidScope  = errors.New("invalid scope")
	ErrCorrupt       = errors.New("corrupt document")
)

// DefaultScope is used when the caller does not name one.
const DefaultScope = "default"

// Backend names a Provider implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendFile, BackendSQLite, BackendMemory:
		return b, nil
	case "":
		return BackendFile, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want file, sqlite or memory)", s)
	}
}

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateScope rejects scope names that cannot be used as a path segment.
func ValidateScope(scope string) error {
	if !scopePattern.MatchString(scope) {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return nil
}

// DefaultDataDir returns the default data directory following XDG.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mockhost")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mockhost", "data")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mockhost")
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "mockhost")
		}
		return filepath.Join(home, "AppData", "Local", "mockhost")
	}
	return filepath.Join(home, ".local", "share", "mockhost")
}
