package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the slate config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		if err := config.CreateSample(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📝 Wrote sample config to %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where the config and data live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, resolved, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		state := "not found, using defaults"
		if exists {
			state = "loaded"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config: %s (%s)\n", resolved, state)
		fmt.Fprintf(cmd.OutOrStdout(), "Data:   %s\n", cfg.DataDir)
		fmt.Fprintf(cmd.OutOrStdout(), "Log:    %s\n", cfg.LogPath())
		return nil
	},
}

func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
