package main

import (
	"os"

	"github.com/aretw0/eventable/internal/cli"
	"github.com/aretw0/eventable/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Stream events published to Redis",
	Long: `Prints every event published to Redis whose name matches pattern
(glob syntax, default "*"). Requires notifier: redis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		pattern := "*"
		if len(args) > 0 {
			pattern = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunWatch(ctx, rt, pattern, tui.NewEventPrinter(os.Stdout))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <event>...",
	Short: "Print the stored history of events",
	Long:  `Prints the envelopes kept in Redis for each event, oldest first. Requires notifier: redis and redis.history > 0.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		return cli.RunHistory(cmd.Context(), rt, args, tui.NewEventPrinter(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}
