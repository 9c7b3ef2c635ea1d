package client

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the background sync daemon",
		Long: `Run the sync engine until interrupted.

A cycle runs at start-up, after every local edit, on the sync interval and,
on Unix, whenever the process receives SIGUSR1.

Example:
  money-keeper run --db ~/.money-keeper.db --address https://money.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := opts.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(ctx)
		},
	}
}
