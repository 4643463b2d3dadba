package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunch matches every LaunchError.
	ErrLaunch = errors.New("launch backend")
	// ErrTerminate matches every TerminationError.
	ErrTerminate = errors.New("stop backend")
)

// LaunchError reports that the OS refused or failed to create the backend
// process. The slot is left empty.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch backend %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() []error { return []error{ErrLaunch, e.Err} }

// TerminationError reports that the termination signal could not be
// delivered. The slot has been cleared regardless.
type TerminationError struct {
	PID int
	Err error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("stop backend (pid %d): %v", e.PID, e.Err)
}

func (e *TerminationError) Unwrap() []error { return []error{ErrTerminate, e.Err} }
