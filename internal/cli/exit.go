package cli

import (
	"context"
	"errors"

	"github.com/trebuchet-org/sling/internal/domain"
)

// Process exit codes
const (
	ExitOK = 0
	// ExitFailure is returned for every fatal error
	ExitFailure = 1
	// ExitMissingCredential is returned when no deployer key is configured.
	// Guidance has already been printed, nothing was sent.
	ExitMissingCredential = 2
	// ExitInterrupted is returned when the run was cancelled by a signal
	ExitInterrupted = 130
)

// ExitError carries the process exit code of a failed command. Silent errors
// have already been reported to the operator.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, domain.ErrMissingCredential) {
		return ExitMissingCredential
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}
