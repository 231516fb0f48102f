package main

import (
	"github.com/aretw0/eventable/internal/cli"
	"github.com/aretw0/eventable/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the model over HTTP:

  GET  /actions           registered actions
  POST /actions/{action}  call an action with a JSON array of params
  GET  /events            model events as Server-Sent Events
  GET  /metrics           Prometheus metrics
  GET  /healthz, /info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr())
		}

		addr, _ := cmd.Flags().GetString("addr")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunServe(ctx, rt, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (defaults to http.addr from the config)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
