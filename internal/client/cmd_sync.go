package client

import (
	"errors"
	"io"

	"github.com/MKhiriev/go-money-keeper/internal/adapter"
	"github.com/spf13/cobra"
)

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle and print its result",
		Long: `Push pending edits, pull remote changes and print per-table counters.

Do not run it against a database a daemon is using at the same time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Services().Orchestrator.RunCycle(cmd.Context())
			if errors.Is(err, adapter.ErrUnauthorized) {
				return wrapExitError(ExitCommandError, "remote store rejected the token", err)
			}
			if err != nil {
				return wrapExitError(ExitFailure, "sync failed", err)
			}

			return opts.printer(cmd).print(result, func(w io.Writer) error {
				return writeSyncResult(w, result)
			})
		},
	}
}
