package main

import (
	"github.com/aretw0/eventable/internal/cli"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the registered actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		format, _ := cmd.Flags().GetString("format")
		return cli.RunActions(rt, cmd.OutOrStdout(), format)
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json, markdown or mermaid")
}
