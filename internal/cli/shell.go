package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/store"
)

const (
	shellName   = "shell"
	shellPrompt = "todo> "
)

// lineReader yields one command line at a time. io.EOF ends the session.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) ReadLine() (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) Close() error { return nil }

// runShell opens the store once and runs one command per input line until
// quit, exit or end of input. Command errors are printed and the loop goes on.
func (d *Dispatcher) runShell(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(shellName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts commonFlags
	opts.register(fs)

	positionalArgs, code, ok := parseFlags(fs, args, errOut)
	if !ok {
		return code
	}
	if len(positionalArgs) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	sess, code, ok := d.open(ctx, opts, true, errOut)
	if !ok {
		return code
	}
	defer sess.close()

	lr, err := d.newLineReader(sess, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer lr.Close()

	if d.interactive() && !sess.cfg.Quiet {
		fmt.Fprintln(out, "Type help for commands, quit to exit.")
	}

	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}

		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return exitcode.Success
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: read input: %v\n", err)
			return exitcode.UserError
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		switch name {
		case "quit", "exit":
			return exitcode.Success
		case shellName:
			fmt.Fprintln(errOut, "error: already in shell")
			continue
		}

		cmd, ok := d.registry.Find(name)
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", fields[0])
			continue
		}
		code := runShellCommand(ctx, cmd, sess.cfg, sess.store, fields[1:], out, errOut)
		sess.logger.Debug("shell command finished", "command", cmd.Name(), "code", code)
	}
}

// runShellCommand runs cmd with its own flags only; common flags apply to the
// whole session.
func runShellCommand(ctx context.Context, cmd commands.Command, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)

	positionalArgs, code, ok := parseFlags(fs, args, errOut)
	if !ok {
		return code
	}
	if !cmd.NeedsStore() {
		st = nil
	}
	return cmd.Run(ctx, cfg, st, positionalArgs, out, errOut)
}

// newLineReader uses readline with a prompt and history on a terminal and
// plain line scanning otherwise.
func (d *Dispatcher) newLineReader(sess *session, out, errOut io.Writer) (lineReader, error) {
	if !d.interactive() {
		return &scanReader{sc: bufio.NewScanner(d.stdin())}, nil
	}

	var historyFile string
	if err := sess.cfg.EnsureDir(); err != nil {
		sess.logger.Warn("shell history disabled", "error", err)
	} else {
		historyFile = sess.cfg.HistoryPath()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          out,
		Stderr:          errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("start shell: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}
