package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/eventable"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of eventable",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eventable version %s\n", strings.TrimSpace(eventable.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
