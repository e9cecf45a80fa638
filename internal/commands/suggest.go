package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/credential"
	"daytask/internal/exitcode"
	"daytask/internal/session"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd implements the suggest command.
type SuggestCmd struct {
	date string
}

// SetDate sets the target date (for testing).
func (c *SuggestCmd) SetDate(date string) {
	c.date = date
}

func (c *SuggestCmd) Name() string       { return "suggest" }
func (c *SuggestCmd) Aliases() []string  { return []string{"gen"} }
func (c *SuggestCmd) Synopsis() string   { return "Add generated task ideas to a date" }
func (c *SuggestCmd) Usage() string      { return "daytask suggest [--date <date>]" }
func (c *SuggestCmd) NeedsSession() bool { return true }

func (c *SuggestCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *SuggestCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	key, err := ParseDateRef(c.date, sess.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := sess.Select(key); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	sg := sess.RequestSuggestions(ctx)
	if errors.Is(sg.Err, credential.ErrNoKey) {
		fmt.Fprintln(errOut, "error: API key required (set GEMINI_API_KEY or run: daytask loadkey <file>)")
		return exitcode.UserError
	}
	if sg.Err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", sg.Err)
		return exitcode.BackendError
	}

	added, err := sess.ApplySuggestions(ctx, sg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		if !added {
			fmt.Fprintln(out, "no suggestions")
			return exitcode.Success
		}
		for _, t := range sg.Tasks {
			fmt.Fprintf(out, "+ %s\n", t.Text)
		}
	}
	return exitcode.Success
}
