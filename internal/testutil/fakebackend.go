// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"slices"
	"time"

	"todo/internal/service"
)

// ErrInjected is a generic backend failure for tests.
var ErrInjected = errors.New("injected backend failure")

// FakeBackend is an in-memory implementation of service.Backend for testing.
// Ids are assigned like an AUTOINCREMENT column unless UseCandidateIDs is set.
type FakeBackend struct {
	tasks  []service.Task
	nextID int64

	// UseCandidateIDs makes Insert keep the id proposed by the store.
	UseCandidateIDs bool

	// Error injection for testing
	LoadErr     error
	InsertErr   error
	CompleteErr error
	DeleteErr   error

	// Call counters
	Inserts     int
	Completions int
	Deletes     int
	Closes      int
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{nextID: 1}
}

// Seed adds persisted tasks as if they had been written earlier.
func (f *FakeBackend) Seed(tasks ...service.Task) {
	for _, t := range tasks {
		f.tasks = append(f.tasks, t)
		f.nextID = max(f.nextID, t.ID+1)
	}
}

// SeedDescriptions seeds tasks with ids 1..n and a fixed timestamp.
func (f *FakeBackend) SeedDescriptions(descriptions ...string) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	for _, d := range descriptions {
		f.Seed(service.Task{ID: f.nextID, Description: d, CreatedAt: at})
	}
}

// Tasks returns the persisted tasks.
func (f *FakeBackend) Tasks() []service.Task {
	return slices.Clone(f.tasks)
}

// LoadAll implements service.Backend.
func (f *FakeBackend) LoadAll(ctx context.Context) ([]service.Task, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	return slices.Clone(f.tasks), nil
}

// Insert implements service.Backend.
func (f *FakeBackend) Insert(ctx context.Context, task service.Task) (service.Task, error) {
	f.Inserts++
	if f.InsertErr != nil {
		return service.Task{}, f.InsertErr
	}
	if !f.UseCandidateIDs {
		task.ID = f.nextID
	}
	f.nextID = max(f.nextID, task.ID+1)
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateCompletion implements service.Backend as a point update.
func (f *FakeBackend) UpdateCompletion(ctx context.Context, id int64, snapshot []service.Task) error {
	f.Completions++
	if f.CompleteErr != nil {
		return f.CompleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = true
			return nil
		}
	}
	return service.ErrNotFound
}

// Delete implements service.Backend as a point delete.
func (f *FakeBackend) Delete(ctx context.Context, id int64, snapshot []service.Task) error {
	f.Deletes++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = slices.Delete(f.tasks, i, i+1)
			return nil
		}
	}
	return service.ErrNotFound
}

// Close implements service.Backend.
func (f *FakeBackend) Close() error {
	f.Closes++
	return nil
}
