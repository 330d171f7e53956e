package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bountylist/internal/config"
)

// DefaultPasswordEnv names the environment variable holding the keyfile password.
const DefaultPasswordEnv = "BOUNTYLIST_PASSWORD"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Config      string
	Ledger      string
	Keypair     string
	PasswordEnv string

	// cfg is the loaded configuration with flag overrides applied.
	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bountylist CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bountylist",
		Short: "Bounty-backed todo lists on a local ledger",
		Long: `Create capacity-bounded todo lists whose items escrow a lamport bounty.

Lists and items live at program-derived addresses on a local SQLite ledger.
Cancelling an item returns its whole bounty to the user who added it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.load(); err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.setupLogging(cmd.ErrOrStderr())
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Config, "config", "", "config file (default <user config dir>/bountylist/config.yaml)")
	flags.StringVar(&opts.Ledger, "ledger", "", "ledger database path (overrides config)")
	flags.StringVar(&opts.Keypair, "keypair", "", "wallet keyfile path (overrides config)")
	flags.StringVar(&opts.PasswordEnv, "password-env", DefaultPasswordEnv, "environment variable holding the keyfile password")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewNewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRentCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd, opts
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout as a JSON response in json format, or on
// stderr in text format.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// cobra argument and flag errors
		exitErr = WrapExitError(ExitCommandError, "invalid command", err)
		err = exitErr
	}
	if exitErr.Reported {
		return exitErr.Code
	}

	format := opts.Format
	if !isValidFormat(format) {
		format = "text"
	}
	f := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	_ = f.Error(ErrorCode(err), err.Error(), nil)
	return exitErr.Code
}

// load reads the config file and applies flag overrides.
// An explicit --config must exist; the default location is optional.
func (o *RootOptions) load() error {
	path, required := o.Config, true
	if path == "" {
		path, required = filepath.Join(config.Dir(), "config.yaml"), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if o.Ledger != "" {
		cfg.Ledger = o.Ledger
	}
	if o.Keypair != "" {
		cfg.Keypair = o.Keypair
	}
	o.cfg = cfg
	return nil
}

func (o *RootOptions) setupLogging(w io.Writer) {
	level := o.cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// password returns the keyfile password from the configured environment variable.
func (o *RootOptions) password() string {
	if o.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(o.PasswordEnv)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
