package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"todo/internal/service"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"invalid input", fmt.Errorf("%w: empty", service.ErrInvalidInput), UserError},
		{"not found", fmt.Errorf("%w: 3", service.ErrNotFound), UserError},
		{"persistence", fmt.Errorf("%w: add: disk full", service.ErrPersistenceFailed), BackendError},
		{"storage", fmt.Errorf("%w: load tasks: %w", service.ErrStorageUnavailable, service.ErrCorruptRecord), StorageError},
		{"unclassified", errors.New("boom"), StorageError},
	}
	for _, tt := range tests {
		if got := For(tt.err); got != tt.want {
			t.Errorf("%s: For() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
