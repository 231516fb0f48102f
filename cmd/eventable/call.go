package main

import (
	"os"

	"github.com/aretw0/eventable/internal/cli"
	"github.com/aretw0/eventable/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <action> [json-args...]",
	Short: "Perform an action",
	Long: `Performs an action on the model. Each argument is decoded as JSON when
possible and passed as a plain string otherwise.

Example:
  eventable call publish 42 '"Hello"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		var printer *tui.EventPrinter
		if showEvents, _ := cmd.Flags().GetBool("events"); showEvents {
			printer = tui.NewEventPrinter(os.Stderr)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunCall(ctx, rt, args[0], args[1:], cmd.OutOrStdout(), printer)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolP("events", "e", false, "Print the events emitted by the call to stderr")
}
