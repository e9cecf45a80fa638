package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
	"daytask/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Serve the tasks over a JSON API" }
func (c *ServeCmd) Usage() string      { return "daytask serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsSession() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.Listen
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "listening on http://%s\n", addr)
	}
	if err := web.NewServer(sess).ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
