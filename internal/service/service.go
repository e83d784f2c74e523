// Package service defines the task entity and the backend-agnostic storage contract.
package service

import (
	"context"
	"errors"
)

// Error classes shared by the store, the backends and the commands.
// Callers classify with errors.Is; backends wrap these with detail.
var (
	// ErrInvalidInput rejects input before any state changes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports an unknown task id.
	ErrNotFound = errors.New("task not found")

	// ErrCorruptRecord reports a persisted record that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrStorageUnavailable reports a medium that cannot be opened or read.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPersistenceFailed reports a mutation the medium did not accept.
	ErrPersistenceFailed = errors.New("persistence failed")
)

// Backend is the durable medium behind a task store.
// The store never touches files or SQL directly; everything goes through here.
//
// A Backend holds no task state between calls other than its handle on the
// medium. Mutating calls receive the store's next snapshot so that backends
// without point updates can rewrite it in full; backends with point updates
// ignore it.
type Backend interface {
	// LoadAll returns every persisted task in creation order.
	// A missing medium yields an empty slice.
	LoadAll(ctx context.Context) ([]Task, error)

	// Insert persists a new task and returns it with the id the backend
	// assigned. task.ID carries the store's candidate id as a lower bound.
	Insert(ctx context.Context, task Task) (Task, error)

	// UpdateCompletion marks task id completed.
	UpdateCompletion(ctx context.Context, id int64, snapshot []Task) error

	// Delete removes task id.
	Delete(ctx context.Context, id int64, snapshot []Task) error

	// Close releases the handle on the medium.
	Close() error
}
