package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"daytask/internal/commands"
	"daytask/internal/config"
	"daytask/internal/exitcode"
	"daytask/internal/session"
)

// SessionFactory creates a Session from config.
// Used to inject the storage and suggestion backends during dispatch.
type SessionFactory func(ctx context.Context, cfg *config.Config) (*session.Session, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  SessionFactory
}

// NewDispatcher creates a new dispatcher with the given registry and session factory.
// A nil factory uses OpenSession.
func NewDispatcher(registry *commands.Registry, factory SessionFactory) *Dispatcher {
	if factory == nil {
		factory = OpenSession
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir     string
	quiet         bool
	debug         bool
	dir           string
	memory        bool
	keyFile       string
	passphraseEnv string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
	fs.StringVar(&f.dir, "dir", "", "")
	fs.BoolVar(&f.memory, "memory", false, "")
	fs.StringVar(&f.keyFile, "key-file", "", "")
	fs.StringVar(&f.passphraseEnv, "passphrase-env", "", "")
}

// apply puts the flags on top of the loaded configuration.
func (f *commonFlags) apply(cfg *config.Config) error {
	cfg.Quiet = f.quiet
	cfg.Debug = f.debug

	if f.dir != "" && f.memory {
		return errors.New("cannot use both --dir and --memory")
	}
	if f.dir != "" {
		cfg.Storage = config.StorageDir
		cfg.Directory = f.dir
	}
	if f.memory {
		cfg.Storage = config.StorageMemory
	}
	if f.keyFile != "" {
		cfg.KeyFile = f.keyFile
	}
	if f.passphraseEnv != "" {
		pass, ok := os.LookupEnv(f.passphraseEnv)
		if !ok || pass == "" {
			return fmt.Errorf("passphrase variable not set: %s", f.passphraseEnv)
		}
		cfg.Passphrase = pass
	}
	return cfg.Validate()
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	// Parse flags
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	// Create config
	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	if !cmd.NeedsSession() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if err := common.apply(cfg); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	sess, err := d.factory(ctx, cfg)
	if err != nil {
		if errors.Is(err, session.ErrDirectoryUnavailable) {
			fmt.Fprintf(errOut, "error: %s\n", err)
		} else {
			fmt.Fprintf(errOut, "error: storage error: %s\n", err)
		}
		return exitcode.StorageError
	}

	// Run command
	return cmd.Run(ctx, cfg, sess, positionalArgs, out, errOut)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + flagName
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
