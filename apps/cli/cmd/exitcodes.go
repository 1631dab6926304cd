package cmd

import "fmt"

// Exit codes for smokespec CLI
const (
	// ExitSuccess indicates all checks passed
	ExitSuccess = 0

	// ExitTestFailure indicates a response did not meet its expectation
	ExitTestFailure = 1

	// ExitConfigError indicates the suite or server configuration is unusable
	ExitConfigError = 3

	// ExitNetworkError indicates no response was obtained
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64

	// ExitInternalError indicates smokespec itself failed, e.g. a file
	// watcher or logger could not be created
	ExitInternalError = 70
)

// exitError carries the process exit code up to Execute. A nil err means
// the failure was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func usageErrorf(format string, args ...any) error {
	return withExitCode(ExitUsageError, fmt.Errorf(format, args...))
}
