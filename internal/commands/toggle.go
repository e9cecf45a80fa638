package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
	"daytask/internal/task"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	date string
}

// SetDate sets the target date (for testing).
func (c *ToggleCmd) SetDate(date string) {
	c.date = date
}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string      { return "daytask toggle [--date <date>] <n>" }
func (c *ToggleCmd) NeedsSession() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, sess, c.date, args, out, errOut, sess.Store.ToggleTask)
}

// runOnTask resolves "<n>" on the given date and applies op to that task.
// Shared by toggle and rm.
func runOnTask(ctx context.Context, cfg *config.Config, sess *session.Session, date string, args []string, out, errOut io.Writer,
	op func(ctx context.Context, dateKey, taskID string) ([]task.Task, error)) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	key, err := ParseDateRef(date, sess.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	t, err := ResolveTask(sess.Store.Bucket(key), num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := op(ctx, key, t.ID); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
