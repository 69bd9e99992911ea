package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/internal/paths"
	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize kitbox storage",
		Long:  "Create the configuration and data directories, write a default config.yaml, then create the schema.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}

	configPath := paths.ConfigFile(a.configDir)
	created, err := writeConfigIfMissing(configPath, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Attach creates the data directory and schema.
	if err := a.withBackend(func(_ *kitbox.Backend) error { return nil }); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, map[string]any{
			"config_dir":     a.configDir,
			"config_file":    configPath,
			"config_created": created,
			"data_dir":       cfg.DataDir,
			"backend":        cfg.Backend,
		})
	}
	fmt.Fprintln(out, "kitbox initialized successfully")
	fmt.Fprintln(out, "  config:", configPath)
	fmt.Fprintln(out, "  data:  ", cfg.DataDir)
	return nil
}
