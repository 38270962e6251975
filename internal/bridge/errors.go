package bridge

import (
	"errors"
	"fmt"
)

// Standard errors returned by the bridge.
var (
	// ErrNoFactory indicates no engine factory was configured.
	ErrNoFactory = errors.New("no engine factory configured")

	// ErrUnknownDocument indicates no snapshot exists for the document.
	ErrUnknownDocument = errors.New("document has no snapshot")

	// ErrStaleHandle indicates the engine instance behind a handle was
	// replaced after the handle was obtained.
	ErrStaleHandle = errors.New("engine handle is stale")
)

// ProjectError wraps an error with the project it occurred in.
type ProjectError struct {
	ConfigPath string
	Err        error
}

// Error implements the error interface.
func (e *ProjectError) Error() string {
	if e.ConfigPath == "" {
		return fmt.Sprintf("project <default>: %v", e.Err)
	}
	return fmt.Sprintf("project %s: %v", e.ConfigPath, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProjectError) Unwrap() error {
	return e.Err
}
