package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                    Interactive shell (list when not a terminal)
  todo shell [common flags]               Interactive shell
  todo list [common flags] [--pending]    List tasks
  todo add [common flags] <description...>
  todo done [common flags] <id>
  todo rm [common flags] <id>
  todo help
  todo version

Shell commands:
  list [--pending], add <description...>, done <id>, rm <id>, help, quit

Common flags:
  --config <dir>      Override config directory
  --backend <kind>    Storage backend: file or sqlite
  --file <path>       Task file for the file backend
  --db <path>         Database for the sqlite backend
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
