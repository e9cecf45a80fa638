package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
	"daytask/internal/task"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Print every task, grouped by date" }
func (c *ExportCmd) Usage() string      { return "daytask export [--format json|yaml|toml]" }
func (c *ExportCmd) NeedsSession() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.format, "f", "json", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	format := c.format
	if format == "" {
		format = "json"
	}
	if err := encodeMap(out, format, sess.Store.Snapshot()); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func encodeMap(w io.Writer, format string, m task.Map) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(m)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
