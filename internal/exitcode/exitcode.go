// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todo/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, empty description, unknown id).
	UserError = 1

	// StorageError indicates the task file or database could not be opened or read.
	StorageError = 2

	// BackendError indicates a write the backend did not accept.
	BackendError = 3
)

// For maps an error to its exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotFound):
		return UserError
	case errors.Is(err, service.ErrPersistenceFailed):
		return BackendError
	default:
		return StorageError
	}
}
