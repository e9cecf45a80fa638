package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "daytask help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  daytask                                        List today's tasks
  daytask list [common flags] [<date>]           List the tasks of a date
  daytask add [common flags] [--date <date>] <text...>
  daytask create [common flags] [--date <date>] <text...>
  daytask toggle [common flags] [--date <date>] <n>
  daytask done [common flags] [--date <date>] <n>
  daytask rm [common flags] [--date <date>] <n>
  daytask suggest [common flags] [--date <date>]
  daytask month [common flags] [<YYYY-MM>]
  daytask export [common flags] [--format json|yaml|toml]
  daytask savekey [common flags] <file>
  daytask loadkey [common flags] <file>
  daytask testkey [common flags]
  daytask tui [common flags]
  daytask serve [common flags] [--addr <host:port>]
  daytask help
  daytask version

Dates are YYYY-MM-DD, today, tomorrow or yesterday.
<n> is the task number shown by list.

Common flags:
  --config <dir>           Override config directory
  --quiet                  Suppress informational output
  --debug                  Print debug logs to stderr
  --dir <path>             Keep one file per date in <path>
  --memory                 Keep tasks in memory only
  --key-file <file>        Load the API key from a key file
  --passphrase-env <VAR>   Read the key file passphrase from $VAR
`
