// Package store owns the in-memory task list and keeps it in step with a backend.
//
// Every mutation computes the next state first, hands it to the backend, and
// only swaps it in once the backend accepted it. A failed mutation therefore
// leaves the in-memory list exactly as it was.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"todo/internal/logs"
	"todo/internal/service"
)

// Store is the authoritative view of all tasks. It is not safe for
// concurrent use.
type Store struct {
	backend service.Backend
	tasks   []service.Task
	lastID  int64
	now     func() time.Time
	logger  *slog.Logger
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open loads every task from b. The store takes ownership of b: if loading
// fails, b is closed before Open returns.
func Open(ctx context.Context, b service.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: b,
		now:     time.Now,
		logger:  logs.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		if cerr := b.Close(); cerr != nil {
			s.logger.Warn("close backend after failed load", "error", cerr)
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	tasks, err := s.backend.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: load tasks: %w", service.ErrStorageUnavailable, err)
	}
	for _, t := range tasks {
		s.lastID = max(s.lastID, t.ID)
	}
	s.tasks = tasks
	s.logger.Debug("tasks loaded", "count", len(tasks), "last_id", s.lastID)
	return nil
}

// Add creates a task. The description must contain non-whitespace text and
// is otherwise stored as given.
func (s *Store) Add(ctx context.Context, description string) (service.Task, error) {
	if strings.TrimSpace(description) == "" {
		return service.Task{}, fmt.Errorf("%w: task description required", service.ErrInvalidInput)
	}

	candidate := service.Task{
		ID:          s.lastID + 1,
		Description: description,
		// Persisted timestamps have second resolution.
		CreatedAt: s.now().Truncate(time.Second),
	}

	task, err := s.backend.Insert(ctx, candidate)
	if err != nil {
		return service.Task{}, persistErr("add", err)
	}
	if task.ID < 1 || s.indexOf(task.ID) >= 0 {
		return service.Task{}, fmt.Errorf("%w: backend assigned unusable id %d", service.ErrPersistenceFailed, task.ID)
	}

	s.tasks = append(s.tasks, task)
	s.lastID = max(s.lastID, task.ID)
	s.logger.Debug("task added", "id", task.ID)
	return task, nil
}

// Complete marks task id completed. Completing a completed task succeeds
// without touching the backend.
func (s *Store) Complete(ctx context.Context, id int64) (service.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound(id)
	}
	if s.tasks[i].Completed {
		return s.tasks[i], nil
	}

	next := slices.Clone(s.tasks)
	next[i].Completed = true
	if err := s.backend.UpdateCompletion(ctx, id, next); err != nil {
		return service.Task{}, persistErr("complete", err)
	}

	s.tasks = next
	s.logger.Debug("task completed", "id", id)
	return next[i], nil
}

// Delete removes task id and returns its description.
func (s *Store) Delete(ctx context.Context, id int64) (string, error) {
	i := s.indexOf(id)
	if i < 0 {
		return "", notFound(id)
	}
	removed := s.tasks[i]

	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.backend.Delete(ctx, id, next); err != nil {
		return "", persistErr("delete", err)
	}

	s.tasks = next
	s.logger.Debug("task deleted", "id", id)
	return removed.Description, nil
}

// List returns a copy of all tasks in creation order.
func (s *Store) List() []service.Task {
	return slices.Clone(s.tasks)
}

// Get returns task id.
func (s *Store) Get(id int64) (service.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, notFound(id)
	}
	return s.tasks[i], nil
}

// Close releases the backend. Calling it again is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}

func notFound(id int64) error {
	return fmt.Errorf("%w: %d", service.ErrNotFound, id)
}

// persistErr classifies a backend error. Input the backend refuses stays
// an input error; anything else is a failed persist.
func persistErr(op string, err error) error {
	if errors.Is(err, service.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", service.ErrPersistenceFailed, op, err)
}
