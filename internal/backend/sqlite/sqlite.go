// Package sqlite implements service.Backend on an embedded SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"todo/internal/service"
)

// DriverName is the database/sql driver used to open the database.
const DriverName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task TEXT NOT NULL,
	created_at TEXT,
	completed INTEGER DEFAULT 0
)`

// Backend stores tasks in a SQLite database. Every statement autocommits.
type Backend struct {
	db *sql.DB
}

var _ service.Backend = (*Backend)(nil)

// Open opens (creating if needed) the database at path and ensures the
// tasks table exists. The connection is closed again if any step fails.
func Open(ctx context.Context, path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: database path is required", service.ErrStorageUnavailable)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %w", service.ErrStorageUnavailable, path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", service.ErrStorageUnavailable, err)
	}

	return &Backend{db: db}, nil
}

// LoadAll selects every row in creation order. AUTOINCREMENT ids grow with
// each insert, so id order is creation order even when the wall clock
// steps back.
func (b *Backend) LoadAll(ctx context.Context) ([]service.Task, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, task, created_at, completed FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query tasks: %w", service.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	tasks := []service.Task{}
	for rows.Next() {
		var (
			id        int64
			desc      string
			createdAt sql.NullString
			completed sql.NullInt64
		)
		if err := rows.Scan(&id, &desc, &createdAt, &completed); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", service.ErrCorruptRecord, err)
		}
		if !createdAt.Valid {
			return nil, fmt.Errorf("%w: task %d has no created_at", service.ErrCorruptRecord, id)
		}
		ts, err := service.ParseTime(createdAt.String)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: invalid created_at %q", service.ErrCorruptRecord, id, createdAt.String)
		}
		tasks = append(tasks, service.Task{
			ID:          id,
			Description: desc,
			CreatedAt:   ts,
			Completed:   completed.Valid && completed.Int64 != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}
	return tasks, nil
}

// Insert stores the task and returns it carrying the AUTOINCREMENT id.
// The candidate id in task.ID is not used.
func (b *Backend) Insert(ctx context.Context, task service.Task) (service.Task, error) {
	id, err := b.InsertOne(ctx, task)
	if err != nil {
		return service.Task{}, err
	}
	task.ID = id
	return task, nil
}

// InsertOne inserts a row and returns the id SQLite assigned to it.
func (b *Backend) InsertOne(ctx context.Context, task service.Task) (int64, error) {
	res, err := b.db.ExecContext(ctx,
		`INSERT INTO tasks (task, created_at, completed) VALUES (?, ?, ?)`,
		task.Description, service.FormatTime(task.CreatedAt), boolToInt(task.Completed))
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// UpdateCompletion sets completed=1 on one row.
func (b *Backend) UpdateCompletion(ctx context.Context, id int64, _ []service.Task) error {
	res, err := b.db.ExecContext(ctx, `UPDATE tasks SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	return expectOneRow(res, "complete", id)
}

// Delete removes one row.
func (b *Backend) Delete(ctx context.Context, id int64, _ []service.Task) error {
	return b.DeleteOne(ctx, id)
}

// DeleteOne removes the row with the given id.
func (b *Backend) DeleteOne(ctx context.Context, id int64) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectOneRow(res, "delete", id)
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

var errNoRow = errors.New("no row affected")

func expectOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s task %d: %w", op, id, err)
	}
	if n != 1 {
		return fmt.Errorf("%s task %d: %w", op, id, errNoRow)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
