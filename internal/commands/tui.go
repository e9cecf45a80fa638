package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
	"daytask/internal/ui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"ui"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive calendar" }
func (c *TUICmd) Usage() string      { return "daytask tui" }
func (c *TUICmd) NeedsSession() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if !ui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: tui requires a TTY")
		return exitcode.UserError
	}
	if err := ui.Run(ctx, sess); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
