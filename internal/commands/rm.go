package commands

import (
	"context"
	"flag"
	"io"

	"daytask/internal/config"
	"daytask/internal/session"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	date string
}

// SetDate sets the target date (for testing).
func (c *RmCmd) SetDate(date string) {
	c.date = date
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "daytask rm [--date <date>] <n>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, sess, c.date, args, out, errOut, sess.Store.DeleteTask)
}
