package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daytask/internal/config"
	"daytask/internal/credential"
	"daytask/internal/exitcode"
	"daytask/internal/session"
)

func init() {
	Register(&SaveKeyCmd{})
	Register(&LoadKeyCmd{})
	Register(&TestKeyCmd{})
}

// SaveKeyCmd implements the savekey command.
// The key written is the session's candidate key (GEMINI_API_KEY or --key-file).
type SaveKeyCmd struct{}

func (c *SaveKeyCmd) Name() string       { return "savekey" }
func (c *SaveKeyCmd) Aliases() []string  { return nil }
func (c *SaveKeyCmd) Synopsis() string   { return "Write the API key to a key file" }
func (c *SaveKeyCmd) Usage() string      { return "daytask savekey [--passphrase-env <VAR>] <file>" }
func (c *SaveKeyCmd) NeedsSession() bool { return true }

func (c *SaveKeyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SaveKeyCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	path, code := keyFileArg(args, errOut)
	if code != exitcode.Success {
		return code
	}

	msg, err := sess.Keys.Save(path, cfg.Passphrase)
	if err == credential.ErrNoKey {
		fmt.Fprintln(errOut, "error: API key required (set GEMINI_API_KEY)")
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	first, warning, _ := strings.Cut(msg, "\n")
	if !cfg.Quiet {
		fmt.Fprintln(out, first)
	}
	if warning != "" {
		fmt.Fprintln(errOut, warning)
	}
	return exitcode.Success
}

// LoadKeyCmd implements the loadkey command.
type LoadKeyCmd struct{}

func (c *LoadKeyCmd) Name() string       { return "loadkey" }
func (c *LoadKeyCmd) Aliases() []string  { return nil }
func (c *LoadKeyCmd) Synopsis() string   { return "Read a key file and test it" }
func (c *LoadKeyCmd) Usage() string      { return "daytask loadkey [--passphrase-env <VAR>] <file>" }
func (c *LoadKeyCmd) NeedsSession() bool { return true }

func (c *LoadKeyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoadKeyCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	path, code := keyFileArg(args, errOut)
	if code != exitcode.Success {
		return code
	}

	key, msg := sess.Keys.LoadFile(path, cfg.Passphrase)
	if key == "" {
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return exitcode.UserError
	}
	return testKey(ctx, cfg, sess, out, errOut)
}

// TestKeyCmd implements the testkey command.
type TestKeyCmd struct{}

func (c *TestKeyCmd) Name() string       { return "testkey" }
func (c *TestKeyCmd) Aliases() []string  { return nil }
func (c *TestKeyCmd) Synopsis() string   { return "Check that the API key works" }
func (c *TestKeyCmd) Usage() string      { return "daytask testkey" }
func (c *TestKeyCmd) NeedsSession() bool { return true }

func (c *TestKeyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TestKeyCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if sess.Keys.Input() == "" {
		fmt.Fprintln(errOut, "error: API key required (set GEMINI_API_KEY or use --key-file)")
		return exitcode.UserError
	}
	return testKey(ctx, cfg, sess, out, errOut)
}

func testKey(ctx context.Context, cfg *config.Config, sess *session.Session, out, errOut io.Writer) int {
	ok, msg := sess.Keys.TestAndApply(ctx)
	if !ok {
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, msg)
	}
	return exitcode.Success
}

func keyFileArg(args []string, errOut io.Writer) (string, int) {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: key file required")
		return "", exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", exitcode.UserError
	}
	path := strings.TrimSpace(args[0])
	if path == "" {
		fmt.Fprintln(errOut, "error: key file required")
		return "", exitcode.UserError
	}
	return path, exitcode.Success
}
