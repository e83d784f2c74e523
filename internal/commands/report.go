package commands

import (
	"errors"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
)

// reportTaskError prints a store error for task id and returns its exit code.
func reportTaskError(errOut io.Writer, id int64, err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: task with ID %d not found\n", id)
	case errors.Is(err, service.ErrInvalidInput):
		fmt.Fprintf(errOut, "error: %v\n", err)
	case errors.Is(err, service.ErrPersistenceFailed):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
	}
	return exitcode.For(err)
}
