package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazycommit/lazycommit/internal/pkg/config"
	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
	"github.com/lazycommit/lazycommit/internal/pkg/security"
	"github.com/lazycommit/lazycommit/internal/pkg/ui"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage lazycommit configuration",
		Long: `Manage lazycommit configuration settings.

Configuration is stored in ~/.lazycommit/config.yaml by default.
Environment variables (LAZY_COMMIT_*) and command-line flags take
precedence over the file.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigListCmd())

	return configCmd
}

func newConfigManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	return mgr, nil
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file interactively",
		Long: `Create the configuration file with default values, then ask for the
provider, API key, model and base URL.

The file is created with permissions 0600 (user read/write only)
as it may contain an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Init(); err != nil {
				return apperrors.NewInvalidConfigError(err.Error()).
					WithSuggestion("Use 'lazycommit config set <key> <value>' to change an existing file")
			}

			if !ui.IsTerminal(os.Stdin) {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", mgr.GetConfigPath())
				return nil
			}
			return ui.RunInteractiveSetup(mgr)
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by key.

Keys use dot notation; 'lazycommit config list' shows all of them.

Examples:
  lazycommit config set provider.name ollama
  lazycommit config set provider.base_url http://192.168.1.20:11434
  lazycommit config set network.bypass_proxy true
  lazycommit config set diff.budget 20000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return apperrors.NewInvalidConfigError(err.Error())
			}

			displayValue := value
			if key == "provider.api_key" {
				displayValue = security.MaskAPIKey(value)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue)
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display every configuration key with its effective value.

API keys are masked, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			settings := mgr.List()
			for _, key := range config.KnownKeys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, settings[key])
			}
			return nil
		},
	}
}
