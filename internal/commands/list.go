package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/output"
	"daytask/internal/session"
	"daytask/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `daytask` (no args) and `daytask list <date>`.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List the tasks of a date" }
func (c *ListCmd) Usage() string      { return "daytask list [<date>]" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	key, err := ParseDateRef(strings.Join(args, ""), sess.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := sess.Select(key); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	day, _ := task.DateOf(key, sess.Now().Location())
	bucket := sess.Store.Bucket(key)
	output.FormatBucket(out, day, bucket)

	if len(bucket) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks")
	}
	return exitcode.Success
}
