package engine

import "errors"

// Lifecycle errors. They are returned as-is and never retried.
var (
	ErrAlreadyRunning  = errors.New("server is already running")
	ErrNotRunning      = errors.New("server is not running")
	ErrPortUnavailable = errors.New("port is not available")
)
