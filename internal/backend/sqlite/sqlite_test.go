package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"todo/internal/service"
)

func newTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.db")
	b, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, path
}

func testTime() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
}

func TestFreshDatabase(t *testing.T) {
	b, _ := newTestBackend(t)

	tasks, err := b.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if tasks == nil {
		t.Error("LoadAll returned nil, want empty slice")
	}
	if len(tasks) != 0 {
		t.Errorf("expected 0 tasks, got %d", len(tasks))
	}
}

func TestInsert_AssignsAutoincrementID(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	// The candidate id is ignored.
	first, err := b.Insert(ctx, service.Task{ID: 42, Description: "a", CreatedAt: testTime()})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	second, err := b.Insert(ctx, service.Task{ID: 42, Description: "b", CreatedAt: testTime()})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestDelete_IDsNotReused(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	b.Insert(ctx, service.Task{Description: "a", CreatedAt: testTime()})
	second, _ := b.Insert(ctx, service.Task{Description: "b", CreatedAt: testTime()})
	if err := b.DeleteOne(ctx, second.ID); err != nil {
		t.Fatalf("DeleteOne: %v", err)
	}

	third, err := b.Insert(ctx, service.Task{Description: "c", CreatedAt: testTime()})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if third.ID != 3 {
		t.Errorf("expected id 3, got %d", third.ID)
	}
}

func TestUpdateCompletion(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	a, _ := b.Insert(ctx, service.Task{Description: "a", CreatedAt: testTime()})
	c, _ := b.Insert(ctx, service.Task{Description: "b", CreatedAt: testTime()})
	if err := b.UpdateCompletion(ctx, c.ID, nil); err != nil {
		t.Fatalf("UpdateCompletion: %v", err)
	}

	tasks, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != a.ID || tasks[0].Completed {
		t.Errorf("task %d should be unchanged, got %+v", a.ID, tasks[0])
	}
	if tasks[1].ID != c.ID || !tasks[1].Completed {
		t.Errorf("task %d should be completed, got %+v", c.ID, tasks[1])
	}
}

func TestUpdateCompletion_UnknownID(t *testing.T) {
	b, _ := newTestBackend(t)

	err := b.UpdateCompletion(context.Background(), 99, nil)
	if !errors.Is(err, errNoRow) {
		t.Fatalf("expected errNoRow, got %v", err)
	}
}

func TestDeleteOne_UnknownID(t *testing.T) {
	b, _ := newTestBackend(t)

	err := b.DeleteOne(context.Background(), 99)
	if !errors.Is(err, errNoRow) {
		t.Fatalf("expected errNoRow, got %v", err)
	}
}

func TestLoadAll_InsertionOrderWhenClockStepsBack(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	b.Insert(ctx, service.Task{Description: "first", CreatedAt: testTime().Add(time.Hour)})
	b.Insert(ctx, service.Task{Description: "second", CreatedAt: testTime()})
	b.Insert(ctx, service.Task{Description: "same second", CreatedAt: testTime()})

	tasks, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	want := []string{"first", "second", "same second"}
	for i := range want {
		if tasks[i].Description != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], tasks[i].Description)
		}
	}
}

func TestReopen_PersistsRows(t *testing.T) {
	b, path := newTestBackend(t)
	ctx := context.Background()

	b.Insert(ctx, service.Task{Description: "keep | pipes", CreatedAt: testTime()})
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	tasks, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "keep | pipes" {
		t.Fatalf("unexpected tasks after reopen: %+v", tasks)
	}
	if !tasks[0].CreatedAt.Equal(testTime()) {
		t.Errorf("expected created_at %v, got %v", testTime(), tasks[0].CreatedAt)
	}
}

func TestLoadAll_CorruptTimestamp(t *testing.T) {
	_, path := newTestBackend(t)

	db, err := sql.Open(DriverName, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(`INSERT INTO tasks (task, created_at) VALUES ('x', 'not a time')`); err != nil {
		t.Fatal(err)
	}

	b, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	_, err = b.LoadAll(context.Background())
	if !errors.Is(err, service.ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestOpen_Unavailable(t *testing.T) {
	// A directory cannot be opened as a database file.
	_, err := Open(context.Background(), t.TempDir())
	if !errors.Is(err, service.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
