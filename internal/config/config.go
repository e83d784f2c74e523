// Package config resolves the configuration directory, backend choice and file paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional CUE configuration filename.
	ConfigFile = "config.cue"

	// EnvFile is the optional dotenv filename.
	EnvFile = ".env"

	// TaskFile is the default flat-file backend filename.
	TaskFile = "todo.txt"

	// DatabaseFile is the default SQLite backend filename.
	DatabaseFile = "todo.db"

	// HistoryFile is the interactive shell history filename.
	HistoryFile = "history"
)

// Backend kinds.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Environment variables read on top of the config file.
const (
	EnvBackend    = "TODO_BACKEND"
	EnvFilePath   = "TODO_FILE"
	EnvDatabase   = "TODO_DATABASE"
	EnvLogFile    = "TODO_LOG_FILE"
	EnvLogJournal = "TODO_LOG_JOURNAL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Backend is the storage kind: BackendFile or BackendSQLite.
	Backend string

	// FilePath is the task file used by the file backend.
	FilePath string

	// DatabasePath is the database used by the sqlite backend.
	DatabasePath string

	// LogFile, when set, receives JSON logs.
	LogFile string

	// Journal sends logs to the systemd journal as well.
	Journal bool

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for configDir (or the default directory when empty)
// with defaults, then applies config.cue, .env and the process environment
// in that order.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:          dir,
		Backend:      BackendFile,
		FilePath:     filepath.Join(dir, TaskFile),
		DatabasePath: filepath.Join(dir, DatabaseFile),
	}

	if err := cfg.loadFile(filepath.Join(dir, ConfigFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(filepath.Join(dir, EnvFile)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Validate checks the backend kind.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown backend: %q (want %q or %q)", c.Backend, BackendFile, BackendSQLite)
	}
}

// SetBackend overrides the backend kind.
func (c *Config) SetBackend(kind string) error {
	c.Backend = kind
	return c.Validate()
}

// HistoryPath returns the path of the shell history file.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Dir, HistoryFile)
}

// EnsureDir creates the config directory if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Resolve makes a relative path relative to the config directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// loadEnv applies dotenv values, then the process environment over them.
func (c *Config) loadEnv(envPath string) error {
	dotenv := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		dotenv, err = godotenv.Read(envPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", envPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", envPath, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend = v
	}
	if v, ok := lookup(EnvFilePath); ok && v != "" {
		c.FilePath = c.Resolve(v)
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.DatabasePath = c.Resolve(v)
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.LogFile = c.Resolve(v)
	}
	if v, ok := lookup(EnvLogJournal); ok && v != "" {
		journal, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", EnvLogJournal, v)
		}
		c.Journal = journal
	}
	return nil
}
