package backend_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"todo/internal/backend"
	"todo/internal/backend/flatfile"
	"todo/internal/backend/sqlite"
	"todo/internal/config"
	"todo/internal/service"
)

func testConfig(t *testing.T, kind string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Dir:          dir,
		Backend:      kind,
		FilePath:     filepath.Join(dir, "todo.txt"),
		DatabasePath: filepath.Join(dir, "todo.db"),
	}
}

func TestOpen_File(t *testing.T) {
	b, err := backend.Open(context.Background(), testConfig(t, config.BackendFile))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if _, ok := b.(*flatfile.Backend); !ok {
		t.Errorf("expected *flatfile.Backend, got %T", b)
	}
}

func TestOpen_SQLite(t *testing.T) {
	b, err := backend.Open(context.Background(), testConfig(t, config.BackendSQLite))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if _, ok := b.(*sqlite.Backend); !ok {
		t.Errorf("expected *sqlite.Backend, got %T", b)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	b, err := backend.Open(context.Background(), testConfig(t, "postgres"))
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if b != nil {
		t.Errorf("expected nil backend, got %T", b)
	}
}

func TestOpen_FailureReturnsNilInterface(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.FilePath = cfg.Dir

	b, err := backend.Open(context.Background(), cfg)
	if !errors.Is(err, service.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if b != nil {
		t.Errorf("expected nil backend, got %T", b)
	}
}
