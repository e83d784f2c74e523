// Package cli parses the command line, opens the task store and runs commands
// once or in an interactive shell.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"todo/internal/backend"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logs"
	"todo/internal/store"
)

// StoreFactory opens the task store for cfg.
// Used to inject the backend during dispatch.
type StoreFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error)

// DefaultFactory opens the backend named by cfg and loads it into a store.
func DefaultFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("backend opened", "backend", cfg.Backend)
	return store.Open(ctx, b, store.WithLogger(logger))
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  StoreFactory

	// Stdin feeds the shell. Defaults to os.Stdin.
	Stdin io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and store factory.
func NewDispatcher(registry *commands.Registry, factory StoreFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> shell on a terminal, otherwise print the list
	if len(args) == 0 {
		if d.interactive() {
			return d.runShell(ctx, nil, out, errOut)
		}
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if strings.EqualFold(cmdName, shellName) {
		return d.runShell(ctx, args[1:], out, errOut)
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts commonFlags
	opts.register(fs)
	cmd.RegisterFlags(fs)

	positionalArgs, code, ok := parseFlags(fs, args, errOut)
	if !ok {
		return code
	}

	sess, code, ok := d.open(ctx, opts, cmd.NeedsStore(), errOut)
	if !ok {
		return code
	}
	defer sess.close()

	return cmd.Run(ctx, sess.cfg, sess.store, positionalArgs, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	backend   string
	file      string
	db        string
	quiet     bool
	debug     bool
}

func (o *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configDir, "config", "", "")
	fs.StringVar(&o.backend, "backend", "", "")
	fs.StringVar(&o.file, "file", "", "")
	fs.StringVar(&o.db, "db", "", "")
	fs.BoolVar(&o.quiet, "quiet", false, "")
	fs.BoolVar(&o.debug, "debug", false, "")
}

// parseFlags parses args into fs and reports flag errors to errOut.
// ok is false when the command must not run.
func parseFlags(fs *flag.FlagSet, args []string, errOut io.Writer) (positional []string, code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		switch {
		case strings.HasPrefix(errStr, "flag needs an argument:"):
			flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		case strings.HasPrefix(errStr, "flag provided but not defined:"):
			flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		default:
			fmt.Fprintf(errOut, "error: %s\n", errStr)
		}
		return nil, exitcode.UserError, false
	}

	// A dash after the first positional argument was not parsed as a flag
	positional = fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return nil, exitcode.UserError, false
	}
	return positional, exitcode.Success, true
}

// session holds what a command run needs and releases it on close.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	closeLog func() error
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close store", "error", err)
		}
	}
	if err := s.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "error: close log file: %v\n", err)
	}
}

// open resolves the configuration, builds the logger and, when needsStore is
// set, opens the store. On failure the error is reported and ok is false.
func (d *Dispatcher) open(ctx context.Context, opts commonFlags, needsStore bool, errOut io.Writer) (sess *session, code int, ok bool) {
	cfg, err := config.New(opts.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return nil, exitcode.UserError, false
	}
	if opts.backend != "" {
		if err := cfg.SetBackend(opts.backend); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError, false
		}
	}
	// Flag paths are relative to the working directory
	if opts.file != "" {
		if cfg.FilePath, err = filepath.Abs(opts.file); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError, false
		}
	}
	if opts.db != "" {
		if cfg.DatabasePath, err = filepath.Abs(opts.db); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError, false
		}
	}
	cfg.Quiet = opts.quiet
	cfg.Debug = cfg.Debug || opts.debug

	logger, closeLog, err := logs.New(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError, false
	}
	sess = &session{cfg: cfg, logger: logger, closeLog: closeLog}

	if !needsStore {
		return sess, exitcode.Success, true
	}

	if d.factory == nil {
		sess.close()
		fmt.Fprintln(errOut, "error: no storage configured")
		return nil, exitcode.StorageError, false
	}
	st, err := d.factory(ctx, cfg, logger)
	if err != nil {
		sess.close()
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		return nil, exitcode.For(err), false
	}
	sess.store = st
	return sess, exitcode.Success, true
}

func (d *Dispatcher) stdin() io.Reader {
	if d.Stdin != nil {
		return d.Stdin
	}
	return os.Stdin
}

// interactive reports whether stdin is a terminal.
func (d *Dispatcher) interactive() bool {
	f, ok := d.stdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
