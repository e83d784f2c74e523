// Package flatfile implements service.Backend on a pipe-delimited text file.
//
// Each task is one line: id|description|created_at|completed. Appends go
// straight to the end of the file; completions and deletions rewrite the
// whole file atomically because the format has no point updates.
//
// The next id lives in a sidecar file (<path>.seq) so that ids are never
// reused, even after the highest task is deleted.
package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"todo/internal/service"
)

// SeqSuffix is appended to the task file path to name the id counter file.
const SeqSuffix = ".seq"

// maxLineSize bounds a single record.
const maxLineSize = 1 << 20

// Backend stores tasks in a flat file.
type Backend struct {
	path    string
	seqPath string
	closed  bool
}

var _ service.Backend = (*Backend)(nil)

// Open prepares the file backend at path. The file itself is created on the
// first write; its directory is created here.
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: task file path is required", service.ErrStorageUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", service.ErrStorageUnavailable, path)
	}
	return &Backend{path: path, seqPath: path + SeqSuffix}, nil
}

// Path returns the task file path.
func (b *Backend) Path() string {
	return b.path
}

// LoadAll reads every record in file order.
func (b *Backend) LoadAll(ctx context.Context) ([]service.Task, error) {
	if err := b.check(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []service.Task{}, nil
		}
		return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}
	defer f.Close()

	tasks := []service.Task{}
	seen := make(map[int64]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		task, err := decodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", service.ErrCorruptRecord, b.path, lineNo, err)
		}
		if prev, dup := seen[task.ID]; dup {
			return nil, fmt.Errorf("%w: %s line %d: id %d already used on line %d",
				service.ErrCorruptRecord, b.path, lineNo, task.ID, prev)
		}
		seen[task.ID] = lineNo
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}

	return tasks, nil
}

// Insert assigns the next id and appends the task.
// The counter is advanced before the append, so a failed append leaves a
// gap rather than an id that could be handed out twice.
func (b *Backend) Insert(ctx context.Context, task service.Task) (service.Task, error) {
	if err := b.check(ctx); err != nil {
		return service.Task{}, err
	}
	if err := validateDescription(task.Description); err != nil {
		return service.Task{}, err
	}

	next, err := b.readSeq()
	if err != nil {
		return service.Task{}, err
	}
	task.ID = max(task.ID, next, 1)

	if err := writeFileAtomic(b.seqPath, []byte(strconv.FormatInt(task.ID+1, 10)+"\n"), 0o644); err != nil {
		return service.Task{}, fmt.Errorf("write id counter: %w", err)
	}
	if err := b.AppendOne(task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// AppendOne writes a single record at the end of the file and syncs it.
// A last record left without its newline is terminated first.
func (b *Backend) AppendOne(task service.Task) error {
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open task file: %w", err)
	}

	record := encodeLine(task)
	terminated, err := endsWithNewline(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("read task file: %w", err)
	}
	if !terminated {
		record = "\n" + record
	}

	if _, err := f.WriteString(record); err != nil {
		f.Close()
		return fmt.Errorf("append task: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync task file: %w", err)
	}
	return f.Close()
}

// endsWithNewline reports whether f is empty or its last byte is '\n'.
func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// RewriteAll replaces the file contents with tasks, in order.
func (b *Backend) RewriteAll(tasks []service.Task) error {
	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(encodeLine(t))
	}
	if err := writeFileAtomic(b.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite task file: %w", err)
	}
	return nil
}

// UpdateCompletion rewrites the file from snapshot.
func (b *Backend) UpdateCompletion(ctx context.Context, id int64, snapshot []service.Task) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	return b.RewriteAll(snapshot)
}

// Delete rewrites the file from snapshot.
func (b *Backend) Delete(ctx context.Context, id int64, snapshot []service.Task) error {
	if err := b.check(ctx); err != nil {
		return err
	}
	return b.RewriteAll(snapshot)
}

// Close marks the backend closed. There is no open descriptor between calls.
func (b *Backend) Close() error {
	b.closed = true
	return nil
}

func (b *Backend) check(ctx context.Context) error {
	if b.closed {
		return fmt.Errorf("%w: backend closed", service.ErrStorageUnavailable)
	}
	return ctx.Err()
}

// readSeq returns the stored next id, or 0 when no counter exists yet.
func (b *Backend) readSeq() (int64, error) {
	data, err := os.ReadFile(b.seqPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read id counter: %w", err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s: invalid id counter %q", service.ErrCorruptRecord, b.seqPath, strings.TrimSpace(string(data)))
	}
	return n, nil
}
