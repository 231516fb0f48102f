package main

import (
	"fmt"
	"os"

	"github.com/aretw0/eventable/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventable",
	Short: "eventable performs model actions wrapped in lifecycle events",
	Long: `eventable calls actions on a model. Every action "x" with a handler emits
"beforeX" and "afterX" around it. Actions are external commands declared in the
configuration file, and events can be fanned out to Redis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRuntime wires the model from the persistent flags.
func buildRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	return cli.Build(cli.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
	})
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "eventable.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
}
