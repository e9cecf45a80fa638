package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	date string
}

// SetDate sets the target date (for testing).
func (c *AddCmd) SetDate(date string) {
	c.date = date
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return nil }
func (c *AddCmd) Synopsis() string   { return "Add a task to a date" }
func (c *AddCmd) Usage() string      { return "daytask add [--date <date>] <text...>" }
func (c *AddCmd) NeedsSession() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, sess, c.date, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	date string
}

func (c *CreateCmd) Name() string       { return "create" }
func (c *CreateCmd) Aliases() []string  { return nil }
func (c *CreateCmd) Synopsis() string   { return "Add a task (alias for add)" }
func (c *CreateCmd) Usage() string      { return "daytask create [--date <date>] <text...>" }
func (c *CreateCmd) NeedsSession() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, sess, c.date, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, sess *session.Session, date string, args []string, out, errOut io.Writer) int {
	// Check for text
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	key, err := ParseDateRef(date, sess.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := sess.Store.AddTask(ctx, key, text); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
