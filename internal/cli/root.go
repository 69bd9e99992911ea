// Package cli implements the kitbox command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/kitbox/internal/observability"
	"github.com/mesh-intelligence/kitbox/internal/paths"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// negativeNumberFlag matches pflag's error for an argument like -3.
var negativeNumberFlag = regexp.MustCompile(`unknown shorthand flag: '\d' in -\d+$`)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	logger    zerolog.Logger
}

// NewRootCmd creates the top-level "kitbox" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "kitbox",
		Short: "Track electronic components across storage boxes",
		Long: "kitbox keeps a ledger of how many of each component type sits in each\n" +
			"storage box, enforcing a per-box capacity for every component type.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if negativeNumberFlag.MatchString(err.Error()) {
			err = fmt.Errorf("%w (use -- before a negative quantity)", err)
		}
		return userError(err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/kitbox)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/kitbox)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newBoxCmd(a))
	root.AddCommand(newComponentCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newRemoveCmd(a))
	root.AddCommand(newTransferCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newSeedCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code. Errors are
// printed to stderr.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "kitbox:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup loads .env, the config file, and the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.config = v
	a.logger = observability.InitLogger("kitbox", v.GetString(cfgKeyLogLevel), v.GetString(cfgKeyLogFormat))
	return nil
}

// exitError carries an explicit process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the caller's input.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// exitCode maps err to a process exit code: domain rejections and usage
// errors are user errors, everything else is a system error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if types.IsDomainError(err) {
		return exitUserError
	}
	return exitSysError
}

// exactArgs is cobra.ExactArgs with the failure reported as a user error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError(err)
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return userError(err)
	}
	return nil
}
