package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Beastly713/bpcs/pkg/config"
)

var configOverwrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the settings file",
	// The file may not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.Default()
		level := settings.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		var err error
		logger, err = newLogger(cmd.ErrOrStderr(), level, logJSON)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in defaults to the settings file",
	Long: `Write the built-in defaults as YAML to --config, or to $HOME/` + config.DefaultFile + `
when no --config is given. Edit the file afterwards; keys you delete fall
back to the built-in value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return fmt.Errorf("failed to locate home directory: %w", err)
			}
		}
		if _, err := os.Stat(path); err == nil && !configOverwrite {
			return fmt.Errorf("config file %s already exists (use --overwrite to replace)", path)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Debug().Str("path", path).Msg("config written")
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVarP(&configOverwrite, "overwrite", "f", false, "Replace an existing settings file")
}
