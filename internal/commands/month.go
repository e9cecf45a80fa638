package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/output"
	"daytask/internal/session"
)

func init() {
	Register(&MonthCmd{})
}

// MonthCmd implements the month command.
type MonthCmd struct{}

func (c *MonthCmd) Name() string       { return "month" }
func (c *MonthCmd) Aliases() []string  { return []string{"cal"} }
func (c *MonthCmd) Synopsis() string   { return "Show a month with task markers" }
func (c *MonthCmd) Usage() string      { return "daytask month [<YYYY-MM>]" }
func (c *MonthCmd) NeedsSession() bool { return true }

func (c *MonthCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MonthCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	var ref string
	if len(args) == 1 {
		ref = args[0]
	}
	anchor, err := ParseMonthRef(ref, sess.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	output.FormatMonth(out, anchor, sess.Selected(), sess.Today(), sess.Store.Statuses())
	return exitcode.Success
}
